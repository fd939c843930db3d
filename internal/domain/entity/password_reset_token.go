package entity

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetToken is a single-use, short-lived credential for the
// forgot-password flow. Only the SHA-256 hash of the raw token is stored.
type PasswordResetToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// IsUsable reports whether the token may still redeem a reset.
func (t *PasswordResetToken) IsUsable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
