package repository

import (
	"context"
	"time"

	"github.com/dom/blog-website/internal/domain"
	"github.com/google/uuid"
)

// NewSession carries everything persisted for one token-pair issuance. Both
// descriptors share TokenID; the hash fields are fingerprints of the signed
// token strings.
type NewSession struct {
	TokenID           uuid.UUID
	AccessValidSince  time.Time
	AccessValidUntil  time.Time
	AccessTokenHash   string
	RefreshValidSince time.Time
	RefreshValidUntil time.Time
	RefreshTokenHash  string
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// FindByIdentifier matches username or email exactly. Returns
	// (nil, nil) when no user matches.
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	// VerifyPassword loads the user and checks raw against the stored
	// password hash. A missing user is a plain false, not an error.
	VerifyPassword(ctx context.Context, userID uuid.UUID, raw string) (bool, error)
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
	SetLastLogin(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type SessionRepository interface {
	// Create appends one session to the user's session list and returns
	// the user, or (nil, nil) if the user does not exist.
	Create(ctx context.Context, userID uuid.UUID, session NewSession) (*domain.User, error)
	// IsLoggedIn returns the user only if a live session with the given
	// access-token id exists whose validity window covers the current
	// time. Evaluated against the clock at call time.
	IsLoggedIn(ctx context.Context, userID, tokenID uuid.UUID) (*domain.User, error)
	GetByTokenID(ctx context.Context, userID, tokenID uuid.UUID) (*domain.Session, error)
	// Revoke marks a single session revoked and clears its refresh
	// fingerprint.
	Revoke(ctx context.Context, sessionID uuid.UUID) error
	// RevokeAll revokes every live session of the user and reports
	// whether anything was live to revoke.
	RevokeAll(ctx context.Context, userID uuid.UUID) (bool, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Repositories struct {
	User    UserRepository
	Session SessionRepository
	Post    PostRepository
}
