package entity

import (
	"time"

	"github.com/google/uuid"
)

// ActivityStatus tracks the lifecycle of an activity. Scanning is only
// meaningful while the activity is ongoing.
type ActivityStatus string

const (
	ActivityStatusDraft     ActivityStatus = "draft"
	ActivityStatusPublished ActivityStatus = "published"
	ActivityStatusOngoing   ActivityStatus = "ongoing"
	ActivityStatusCompleted ActivityStatus = "completed"
	ActivityStatusCancelled ActivityStatus = "cancelled"
)

// String returns the string representation of the ActivityStatus.
func (s ActivityStatus) String() string {
	return string(s)
}

// IsValid checks if the ActivityStatus is a valid value.
func (s ActivityStatus) IsValid() bool {
	switch s {
	case ActivityStatusDraft, ActivityStatusPublished, ActivityStatusOngoing,
		ActivityStatusCompleted, ActivityStatusCancelled:
		return true
	default:
		return false
	}
}

// Activity is an event students attend, owned by an organization and run
// between StartTime and EndTime.
type Activity struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	Title           string
	Description     string
	Location        string
	MaxParticipants int // Zero means unlimited.
	Hours           int // Credit hours awarded for completion.
	StartTime       time.Time
	EndTime         time.Time
	Status          ActivityStatus
	CreatedBy       uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsOngoing reports whether scans should be accepted for the activity.
func (a *Activity) IsOngoing() bool {
	return a.Status == ActivityStatusOngoing
}

// HasEnded reports whether the activity's scheduled window has passed.
func (a *Activity) HasEnded(now time.Time) bool {
	return now.After(a.EndTime)
}
