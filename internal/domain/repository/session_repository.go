package repository

import (
	"context"

	"trackivity/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for session persistence.
var (
	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")
)

// SessionRepository defines the interface for server-side session management.
// Each row backs one issued session token; deactivating a row revokes the
// token regardless of its JWT expiry.
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID retrieves a session by its UUID string ID.
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// FindActiveByUserID retrieves all active, unexpired sessions for a user.
	FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error)

	// Deactivate flips is_active off for a single session. It succeeds even
	// when the session is already inactive, so logout stays idempotent.
	Deactivate(ctx context.Context, id string) error

	// DeactivateAllByUserID revokes every session belonging to a user.
	// Used after a password reset to force re-authentication everywhere.
	DeactivateAllByUserID(ctx context.Context, userID uuid.UUID) error

	// Touch updates last_seen_at for activity tracking.
	Touch(ctx context.Context, id string) error

	// DeleteExpired removes sessions past their expiry. Called periodically
	// for cleanup.
	DeleteExpired(ctx context.Context) error
}
