package repository

import (
	"context"

	"trackivity/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for password reset token persistence.
var (
	// ErrResetTokenNotFound is returned when no reset token matches the hash.
	ErrResetTokenNotFound = errors.New("password reset token not found")
)

// PasswordResetRepository defines the interface for password reset token
// management. Raw tokens never reach the database; lookups use their hash.
type PasswordResetRepository interface {
	// Create persists a new reset token record.
	Create(ctx context.Context, token *entity.PasswordResetToken) error

	// FindByTokenHash retrieves a reset token record by its stored hash.
	FindByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordResetToken, error)

	// MarkUsed stamps used_at so the token cannot redeem twice.
	MarkUsed(ctx context.Context, id uuid.UUID) error

	// InvalidateByUserID voids all outstanding reset tokens for a user.
	InvalidateByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired removes tokens past their expiry.
	DeleteExpired(ctx context.Context) error
}
