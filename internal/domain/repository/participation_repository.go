package repository

import (
	"context"

	"trackivity/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for participation persistence.
var (
	// ErrParticipationNotFound is returned when no participation row exists
	// for a (user, activity) pair.
	ErrParticipationNotFound = errors.New("participation not found")
	// ErrDuplicateParticipation is returned when the (user, activity) unique
	// constraint rejects an insert.
	ErrDuplicateParticipation = errors.New("participation already exists")
)

// ParticipationRepository defines the standard operations for participation
// persistence. The database enforces at most one row per (user, activity).
type ParticipationRepository interface {
	// FindByUserAndActivity retrieves the participation row for a pair.
	FindByUserAndActivity(ctx context.Context, userID, activityID uuid.UUID) (*entity.Participation, error)

	// FindByActivity retrieves all participations for an activity.
	FindByActivity(ctx context.Context, activityID uuid.UUID) ([]*entity.Participation, error)

	// FindByUser retrieves all participations for a user, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Participation, error)

	// CountByActivity returns the number of participants in an activity.
	CountByActivity(ctx context.Context, activityID uuid.UUID) (int, error)

	// Create persists a new participation row.
	// Returns ErrDuplicateParticipation on a unique constraint violation.
	Create(ctx context.Context, participation *entity.Participation) error

	// Update modifies an existing participation row.
	Update(ctx context.Context, participation *entity.Participation) error
}
