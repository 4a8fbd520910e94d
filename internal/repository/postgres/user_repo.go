package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/blog-website/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PasswordVerifier is the slice of the password hasher the store needs.
type PasswordVerifier interface {
	Verify(raw, encoded string) (bool, error)
}

type userRepository struct {
	db     *gorm.DB
	hasher PasswordVerifier
	log    *zap.Logger
}

func NewUserRepository(db *gorm.DB, hasher PasswordVerifier, log *zap.Logger) *userRepository {
	return &userRepository{db: db, hasher: hasher, log: log}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return &user, nil
}

func (r *userRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	if identifier == "" {
		r.log.Warn("user lookup with empty identifier")
		return nil, fmt.Errorf("%w: empty identifier", domain.ErrInvalidInput)
	}

	var user domain.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return &user, nil
}

func (r *userRepository) VerifyPassword(ctx context.Context, userID uuid.UUID, raw string) (bool, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}

	ok, err := r.hasher.Verify(raw, user.PasswordHash)
	if err != nil {
		r.log.Error("password verification failed", zap.String("user_id", userID.String()), zap.Error(err))
		return false, err
	}
	return ok, nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("password_hash", hash)
	if res.Error != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetLastLogin(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("last_login", now)
	if res.Error != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, userID)
}
