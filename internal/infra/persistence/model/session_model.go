package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel mirrors the 'sessions' table. The primary key is the token's
// session_id claim, stored as its string form.
type SessionModel struct {
	ID          string    `gorm:"type:varchar(36);primary_key"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	IsActive    bool      `gorm:"not null;default:true;index"`
	LoginMethod string    `gorm:"type:varchar(20);not null;default:'password'"`
	IPAddress   string    `gorm:"type:varchar(45)"`
	UserAgent   string    `gorm:"type:text"`
	ExpiresAt   time.Time `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastSeenAt  *time.Time
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}

// PasswordResetTokenModel mirrors the 'password_reset_tokens' table. Only
// the SHA-256 hash of a token is ever stored.
type PasswordResetTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"type:varchar(64);unique;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (PasswordResetTokenModel) TableName() string {
	return "password_reset_tokens"
}
