package postgres

import (
	"github.com/dom/blog-website/internal/domain"
	"github.com/dom/blog-website/internal/repository"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.Post{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB, hasher PasswordVerifier, log *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(db, hasher, log),
		Session: NewSessionRepository(db),
		Post:    NewPostRepository(db),
	}
}
