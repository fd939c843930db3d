package repository

import (
	"context"

	"trackivity/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for activity persistence.
var (
	// ErrActivityNotFound is returned when an activity is not found.
	ErrActivityNotFound = errors.New("activity not found")
)

// ActivityListFilter narrows List results. Zero values mean "no filter".
type ActivityListFilter struct {
	OrganizationID *uuid.UUID
	Status         entity.ActivityStatus
	Limit          int
	Offset         int
}

// ActivityRepository defines the standard operations for activity persistence.
type ActivityRepository interface {
	// FindByID retrieves a single activity by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error)

	// List retrieves activities matching the filter, newest first.
	List(ctx context.Context, filter ActivityListFilter) ([]*entity.Activity, error)

	// Create persists a new activity.
	Create(ctx context.Context, activity *entity.Activity) error

	// Update modifies an existing activity.
	Update(ctx context.Context, activity *entity.Activity) error

	// UpdateStatus moves an activity to a new lifecycle status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ActivityStatus) error
}
