package entity

import (
	"time"

	"github.com/google/uuid"
)

// AdminLevel ranks administrative privileges from broadest to narrowest.
type AdminLevel string

const (
	// AdminLevelSuper grants full control over every organization.
	AdminLevelSuper AdminLevel = "super_admin"
	// AdminLevelOrganization grants control within a single organization.
	AdminLevelOrganization AdminLevel = "organization_admin"
	// AdminLevelRegular grants activity-scoped duties such as scanning.
	AdminLevelRegular AdminLevel = "regular_admin"
)

// String returns the string representation of the AdminLevel.
func (l AdminLevel) String() string {
	return string(l)
}

// IsValid checks if the AdminLevel is a valid value.
func (l AdminLevel) IsValid() bool {
	switch l {
	case AdminLevelSuper, AdminLevelOrganization, AdminLevelRegular:
		return true
	default:
		return false
	}
}

// AtLeast reports whether l carries privileges equal to or broader than other.
func (l AdminLevel) AtLeast(other AdminLevel) bool {
	return l.rank() >= other.rank()
}

func (l AdminLevel) rank() int {
	switch l {
	case AdminLevelSuper:
		return 3
	case AdminLevelOrganization:
		return 2
	case AdminLevelRegular:
		return 1
	default:
		return 0
	}
}

// AdminRole attaches administrative privileges to a user, optionally scoped
// to an organization. SuperAdmin roles have a nil OrganizationID.
type AdminRole struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	AdminLevel     AdminLevel
	OrganizationID *uuid.UUID
	Permissions    []string
	IsEnabled      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Allows reports whether the role is enabled and carries at least the
// requested level.
func (r *AdminRole) Allows(level AdminLevel) bool {
	if r == nil || !r.IsEnabled {
		return false
	}

	return r.AdminLevel.AtLeast(level)
}
