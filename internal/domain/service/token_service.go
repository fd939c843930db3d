package service

import (
	"time"

	"trackivity/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Token validation errors. Callers branch on these to choose between an
// "expired" and a generic "invalid" response.
var (
	// ErrTokenExpired is returned when a token's exp claim has passed.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenMalformed is returned for any other validation failure:
	// bad signature, wrong algorithm, missing claims, or garbage input.
	ErrTokenMalformed = errors.New("token is malformed or invalid")
)

// RoleClaim carries a snapshot of the user's admin role inside a session
// token. It reflects the role at login time; authorization-sensitive reads
// should re-check the database.
type RoleClaim struct {
	AdminLevel     entity.AdminLevel `json:"admin_level"`
	OrganizationID *uuid.UUID        `json:"organization_id,omitempty"`
}

// ProfileClaim carries display fields so clients can render the signed-in
// user without an extra round trip.
type ProfileClaim struct {
	StudentID string `json:"student_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SessionClaims defines the custom claims for session tokens.
type SessionClaims struct {
	UserID    uuid.UUID    `json:"user_id"`
	SessionID string       `json:"session_id"`
	Profile   ProfileClaim `json:"profile"`
	Role      *RoleClaim   `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ScanClaims defines the custom claims for short-lived scan tokens embedded
// in attendance QR codes. The jti makes each issued token distinct even when
// the same user regenerates within one second.
type ScanClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	SessionID string    `json:"session_id"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateSessionToken creates a signed session token for a user. The
	// claims embed the user's profile and role as they stand right now.
	GenerateSessionToken(user *entity.User, sessionID string, expiresAt time.Time) (string, error)

	// ValidateSessionToken checks signature and expiry of a session token.
	ValidateSessionToken(tokenString string) (*SessionClaims, error)

	// GenerateScanToken creates a short-lived token for attendance QR codes
	// and reports when it expires.
	GenerateScanToken(userID uuid.UUID, sessionID string) (token string, expiresAt time.Time, err error)

	// ValidateScanToken checks signature and expiry of a scan token.
	ValidateScanToken(tokenString string) (*ScanClaims, error)

	// SessionDuration returns the configured session lifetime, honoring the
	// extended "remember me" window when asked.
	SessionDuration(rememberMe bool) time.Duration
}
