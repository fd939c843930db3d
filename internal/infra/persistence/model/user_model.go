// Package model holds the GORM persistence models mirroring the database
// tables. Mapping to and from domain entities happens in the repositories.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v7().
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	StudentID    string    `gorm:"type:varchar(20);unique;not null"`
	Email        string    `gorm:"type:varchar(255);unique;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Prefix       string    `gorm:"type:varchar(20)"`
	FirstName    string    `gorm:"type:varchar(100);not null"`
	LastName     string    `gorm:"type:varchar(100);not null"`
	Phone        string    `gorm:"type:varchar(20)"`
	DepartmentID *uuid.UUID `gorm:"type:uuid"`
	Status       string    `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt  *time.Time
	LoginCount   int `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`

	AdminRole *AdminRoleModel `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// AdminRoleModel mirrors the 'admin_roles' table. UserID references users.id (UUID).
type AdminRoleModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID         uuid.UUID  `gorm:"type:uuid;unique;not null"`
	AdminLevel     string     `gorm:"type:varchar(30);not null"`
	OrganizationID *uuid.UUID `gorm:"type:uuid"`
	Permissions    []byte     `gorm:"type:jsonb"`
	IsEnabled      bool       `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (AdminRoleModel) TableName() string {
	return "admin_roles"
}
