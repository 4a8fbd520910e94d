package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string         `json:"username" gorm:"uniqueIndex;not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	LastLogin    *time.Time     `json:"lastLogin"`
	Sessions     []Session      `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// Session is one authenticated device/browser session. The access and
// refresh descriptors of the same issuance share TokenID so the pair can be
// correlated at the store level. Hash columns hold fingerprints of the
// signed token strings; the raw tokens are never persisted.
type Session struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`

	TokenID uuid.UUID `json:"tokenId" gorm:"type:uuid;not null;index"`

	AccessValidSince time.Time `json:"accessValidSince" gorm:"not null"`
	AccessValidUntil time.Time `json:"accessValidUntil" gorm:"not null"`
	AccessTokenHash  string    `json:"-" gorm:"not null"`

	RefreshValidSince time.Time `json:"refreshValidSince" gorm:"not null"`
	RefreshValidUntil time.Time `json:"refreshValidUntil" gorm:"not null"`
	RefreshTokenHash  string    `json:"-" gorm:"not null"`

	Revoked   bool      `json:"revoked" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicUser is the projection of User that crosses the API boundary.
type PublicUser struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	LastLogin *time.Time `json:"lastLogin"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		LastLogin: u.LastLogin,
	}
}
