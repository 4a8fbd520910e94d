package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/blog-website/internal/domain"
	"github.com/dom/blog-website/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, userID uuid.UUID, session repository.NewSession) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	record := &domain.Session{
		ID:                uuid.New(),
		UserID:            userID,
		TokenID:           session.TokenID,
		AccessValidSince:  session.AccessValidSince,
		AccessValidUntil:  session.AccessValidUntil,
		AccessTokenHash:   session.AccessTokenHash,
		RefreshValidSince: session.RefreshValidSince,
		RefreshValidUntil: session.RefreshValidUntil,
		RefreshTokenHash:  session.RefreshTokenHash,
		CreatedAt:         time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	err = r.db.WithContext(ctx).
		Preload("Sessions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&user, "id = ?", userID).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return &user, nil
}

func (r *sessionRepository) IsLoggedIn(ctx context.Context, userID, tokenID uuid.UUID) (*domain.User, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND token_id = ? AND revoked = ? AND access_valid_until > ?",
			userID, tokenID, false, time.Now().UTC()).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	var user domain.User
	err = r.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return &user, nil
}

func (r *sessionRepository) GetByTokenID(ctx context.Context, userID, tokenID uuid.UUID) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND token_id = ?", userID, tokenID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return &session, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, sessionID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&domain.Session{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{"revoked": true, "refresh_token_hash": ""})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, res.Error)
	}
	return nil
}

func (r *sessionRepository) RevokeAll(ctx context.Context, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Session{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Updates(map[string]interface{}{"revoked": true, "refresh_token_hash": ""})
	if res.Error != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrPersistence, res.Error)
	}
	return res.RowsAffected > 0, nil
}
