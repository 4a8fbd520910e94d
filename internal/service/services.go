package service

import (
	"github.com/dom/blog-website/internal/repository"
	"github.com/dom/blog-website/internal/security"
	"go.uber.org/zap"
)

type Services struct {
	Auth *AuthService
	Post *PostService
}

func NewServices(repos *repository.Repositories, hasher *security.Hasher, signer *security.TokenSigner, log *zap.Logger) *Services {
	return &Services{
		Auth: NewAuthService(repos.User, repos.Session, hasher, signer, log),
		Post: NewPostService(repos.Post),
	}
}
