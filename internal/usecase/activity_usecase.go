package usecase

import (
	"context"
	"time"

	"trackivity/internal/domain/entity"
	"trackivity/internal/domain/repository"

	"github.com/google/uuid"
)

// CreateActivityInput defines the data required to create an activity.
type CreateActivityInput struct {
	OrganizationID  uuid.UUID
	Title           string
	Description     string
	Location        string
	MaxParticipants int
	Hours           int
	StartTime       time.Time
	EndTime         time.Time
	CreatedBy       uuid.UUID
}

// UpdateActivityInput carries the editable fields of an activity. Nil
// pointers leave the current value untouched.
type UpdateActivityInput struct {
	Title           *string
	Description     *string
	Location        *string
	MaxParticipants *int
	Hours           *int
	StartTime       *time.Time
	EndTime         *time.Time
}

// ActivityUsecase defines the interface for activity management operations.
type ActivityUsecase interface {
	// Create persists a new activity in draft status.
	Create(ctx context.Context, input CreateActivityInput) (*entity.Activity, error)

	// Update edits an activity's details.
	Update(ctx context.Context, id uuid.UUID, input UpdateActivityInput) (*entity.Activity, error)

	// ChangeStatus moves an activity along its lifecycle, rejecting
	// transitions the lifecycle does not allow.
	ChangeStatus(ctx context.Context, id uuid.UUID, status entity.ActivityStatus) (*entity.Activity, error)

	// Get returns a single activity.
	Get(ctx context.Context, id uuid.UUID) (*entity.Activity, error)

	// List returns activities matching the filter.
	List(ctx context.Context, filter repository.ActivityListFilter) ([]*entity.Activity, error)

	// Join registers the user for an activity ahead of time.
	Join(ctx context.Context, userID, activityID uuid.UUID) (*entity.Participation, error)

	// MyParticipations returns the user's participation history.
	MyParticipations(ctx context.Context, userID uuid.UUID) ([]*entity.Participation, error)
}
