// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"trackivity/internal/domain/entity"
	"trackivity/internal/domain/service"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user.
type RegisterInput struct {
	StudentID string
	Email     string
	Password  string
	Prefix    string
	FirstName string
	LastName  string
	Phone     string
}

// LoginInput defines the data required for a user to log in. Identifier
// accepts either an email address or a student ID.
type LoginInput struct {
	Identifier string
	Password   string
	RememberMe bool
	IPAddress  string
	UserAgent  string
}

// ResetPasswordInput carries a raw reset token and the replacement password.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's basic information.
type RegisterOutput struct {
	User *entity.User
}

// LoginOutput returns the issued session token after a successful login.
type LoginOutput struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// AuthContext is the result of validating a session token: the verified
// claims plus the live session row they are bound to.
type AuthContext struct {
	Claims  *service.SessionClaims
	Session *entity.Session
}

// AuthUsecase defines the interface for authentication business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	// Register creates a new student account.
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)

	// Login verifies credentials, opens a session, and issues its token.
	// Lookup and password failures both surface ErrInvalidCredentials.
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)

	// Logout deactivates the session. Calling it again is a no-op.
	Logout(ctx context.Context, sessionID string) error

	// Me returns the user's current profile from storage, not from claims.
	Me(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// ValidateSession verifies a session token end to end: signature,
	// expiry, and the backing session row being active.
	ValidateSession(ctx context.Context, tokenString string) (*AuthContext, error)

	// ForgotPassword opens a reset flow for the account behind the email.
	// It returns the raw reset token for out-of-band delivery; the caller
	// must not expose it to the requester in production. Unknown emails
	// return an empty token with no error so the endpoint can't probe
	// which addresses exist.
	ForgotPassword(ctx context.Context, email string) (string, error)

	// ResetPassword redeems a reset token, replaces the password, and
	// revokes every session the user holds.
	ResetPassword(ctx context.Context, input ResetPasswordInput) error
}
