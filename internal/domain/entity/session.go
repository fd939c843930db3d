package entity

import (
	"time"

	"github.com/google/uuid"
)

// LoginMethod records how a session was established.
type LoginMethod string

const (
	// LoginMethodPassword is the only method currently issued.
	LoginMethodPassword LoginMethod = "password"
)

// Session is the server-side record backing a session token. A token is
// only honored while its session row is active and unexpired; flipping
// IsActive revokes the token immediately regardless of its JWT expiry.
type Session struct {
	ID         string // UUID string, doubles as the JWT session_id claim.
	UserID     uuid.UUID
	IsActive   bool
	Method     LoginMethod
	IPAddress  string
	UserAgent  string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastSeenAt *time.Time
}

// IsValid reports whether the session may still authenticate requests.
func (s *Session) IsValid(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}
