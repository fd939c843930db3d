package model

import (
	"time"

	"github.com/google/uuid"
)

// ActivityModel mirrors the 'activities' table.
type ActivityModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	OrganizationID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Title           string    `gorm:"type:varchar(255);not null"`
	Description     string    `gorm:"type:text"`
	Location        string    `gorm:"type:varchar(255)"`
	MaxParticipants int       `gorm:"not null;default:0"`
	Hours           int       `gorm:"not null;default:0"`
	StartTime       time.Time `gorm:"not null"`
	EndTime         time.Time `gorm:"not null"`
	Status          string    `gorm:"type:varchar(20);not null;default:'draft';index"`
	CreatedBy       uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Participations []ParticipationModel `gorm:"foreignKey:ActivityID"`
}

// TableName explicitly sets the table name for GORM.
func (ActivityModel) TableName() string {
	return "activities"
}

// ParticipationModel mirrors the 'participations' table. The composite
// unique index keeps one row per (user, activity) pair.
type ParticipationModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participations_user_activity"`
	ActivityID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participations_user_activity"`
	Status       string    `gorm:"type:varchar(20);not null;default:'registered'"`
	RegisteredAt time.Time `gorm:"not null"`
	CheckedInAt  *time.Time
	CheckedOutAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (ParticipationModel) TableName() string {
	return "participations"
}
