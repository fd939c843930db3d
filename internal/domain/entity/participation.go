package entity

import (
	"time"

	"github.com/google/uuid"
)

// ParticipationStatus walks a strict forward-only path:
// registered -> checked_in -> checked_out.
type ParticipationStatus string

const (
	ParticipationStatusRegistered ParticipationStatus = "registered"
	ParticipationStatusCheckedIn  ParticipationStatus = "checked_in"
	ParticipationStatusCheckedOut ParticipationStatus = "checked_out"
)

// String returns the string representation of the ParticipationStatus.
func (s ParticipationStatus) String() string {
	return string(s)
}

// IsValid checks if the ParticipationStatus is a valid value.
func (s ParticipationStatus) IsValid() bool {
	switch s {
	case ParticipationStatusRegistered, ParticipationStatusCheckedIn, ParticipationStatusCheckedOut:
		return true
	default:
		return false
	}
}

// Participation links a user to an activity. At most one row exists per
// (user, activity) pair; the database enforces the uniqueness.
type Participation struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	ActivityID   uuid.UUID
	Status       ParticipationStatus
	RegisteredAt time.Time
	CheckedInAt  *time.Time
	CheckedOutAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
