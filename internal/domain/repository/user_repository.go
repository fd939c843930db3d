// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"
	"time"

	"trackivity/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for user persistence.
var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when an email or student ID is already taken.
	ErrDuplicateUser = errors.New("email or student id already registered")
)

// UserRepository defines the standard operations for user persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID, including any admin role.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByStudentID retrieves a single user by their campus student ID.
	FindByStudentID(ctx context.Context, studentID string) (*entity.User, error)

	// FindByLoginIdentifier resolves a login credential that may be either an
	// email address or a student ID.
	FindByLoginIdentifier(ctx context.Context, identifier string) (*entity.User, error)

	// Create persists a new user entity to the storage.
	// Returns ErrDuplicateUser when the email or student ID is taken.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing user entity in the storage.
	Update(ctx context.Context, user *entity.User) error

	// UpdatePassword replaces the stored password hash for a user.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// RecordLogin bumps last_login_at and the login counter. Failures here
	// must not abort a login, so callers treat errors as advisory.
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
