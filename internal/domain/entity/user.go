// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus represents the lifecycle state of a user account.
type UserStatus string

const (
	// UserStatusActive indicates a usable account.
	UserStatusActive UserStatus = "active"
	// UserStatusInactive indicates an account that has been disabled.
	UserStatusInactive UserStatus = "inactive"
	// UserStatusSuspended indicates an account blocked by an administrator.
	UserStatusSuspended UserStatus = "suspended"
)

// String returns the string representation of the UserStatus.
func (s UserStatus) String() string {
	return string(s)
}

// IsValid checks if the UserStatus is a valid value.
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	default:
		return false
	}
}

// User is the core principal of the system: a student or staff member.
// PasswordHash holds the argon2id-encoded secret and must never be logged
// or returned to clients.
type User struct {
	ID           uuid.UUID
	StudentID    string // Secondary login identifier, unique campus-wide.
	Email        string // Primary login identifier.
	PasswordHash string
	Prefix       string
	FirstName    string
	LastName     string
	Phone        string
	DepartmentID *uuid.UUID
	Status       UserStatus
	AdminRole    *AdminRole // Nil for regular students.
	LastLoginAt  *time.Time
	LoginCount   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time // Soft delete; users referenced by participations are never removed.
}

// FullName returns the display name used by scanning UIs.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive && u.DeletedAt == nil
}
