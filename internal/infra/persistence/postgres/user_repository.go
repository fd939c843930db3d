package postgres

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"trackivity/internal/domain/entity"
	domainerrors "trackivity/internal/domain/errors"
	"trackivity/internal/domain/repository"
	"trackivity/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID, preloading any admin role.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Preload("AdminRole").
		Where("id = ?", id).
		First(&userM).Error

	if err != nil {
		// If the error is 'record not found', return a domain-specific error.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user by their email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, "email = ?", strings.ToLower(email))
}

// FindByStudentID retrieves a single user by their campus student ID.
func (repo *userRepository) FindByStudentID(ctx context.Context, studentID string) (*entity.User, error) {
	return repo.findOne(ctx, "student_id = ?", studentID)
}

// FindByLoginIdentifier resolves an identifier that may be an email or a
// student ID. Anything containing '@' is treated as an email.
func (repo *userRepository) FindByLoginIdentifier(ctx context.Context, identifier string) (*entity.User, error) {
	if strings.Contains(identifier, "@") {
		return repo.FindByEmail(ctx, identifier)
	}

	return repo.FindByStudentID(ctx, identifier)
}

func (repo *userRepository) findOne(ctx context.Context, cond string, arg any) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Preload("AdminRole").
		Where(cond, arg).
		First(&userM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user entity to the database.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateUser
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Update the user entity with the generated ID and timestamps
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update modifies an existing user entity in the database.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Save(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateUser
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update user")
	}

	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// UpdatePassword replaces only the stored password hash.
func (repo *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update password")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// RecordLogin bumps last_login_at and the login counter in one statement.
func (repo *userRepository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_login_at": at,
			"login_count":   gorm.Expr("login_count + 1"),
		}).Error

	if err != nil {
		return errors.Wrap(err, "failed to record login")
	}

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	var deletedAt *time.Time
	if data.DeletedAt.Valid {
		ts := data.DeletedAt.Time
		deletedAt = &ts
	}

	return &entity.User{
		ID:           data.ID,
		StudentID:    data.StudentID,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		Prefix:       data.Prefix,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Phone:        data.Phone,
		DepartmentID: data.DepartmentID,
		Status:       entity.UserStatus(data.Status),
		AdminRole:    toAdminRoleDomain(data.AdminRole),
		LastLoginAt:  data.LastLoginAt,
		LoginCount:   data.LoginCount,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
		DeletedAt:    deletedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if data.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *data.DeletedAt, Valid: true}
	}

	return &model.UserModel{
		ID:           data.ID,
		StudentID:    data.StudentID,
		Email:        strings.ToLower(data.Email),
		PasswordHash: data.PasswordHash,
		Prefix:       data.Prefix,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Phone:        data.Phone,
		DepartmentID: data.DepartmentID,
		Status:       data.Status.String(),
		LastLoginAt:  data.LastLoginAt,
		LoginCount:   data.LoginCount,
		CreatedAt:    data.CreatedAt,
		DeletedAt:    deletedAt,
	}
}

// toAdminRoleDomain converts a GORM AdminRoleModel to a domain AdminRole entity.
func toAdminRoleDomain(data *model.AdminRoleModel) *entity.AdminRole {
	if data == nil {
		return nil
	}

	var permissions []string
	if len(data.Permissions) != 0 {
		// Permissions are stored as a JSON array; a corrupt value degrades
		// to no extra permissions rather than failing the whole read.
		_ = json.Unmarshal(data.Permissions, &permissions)
	}

	return &entity.AdminRole{
		ID:             data.ID,
		UserID:         data.UserID,
		AdminLevel:     entity.AdminLevel(data.AdminLevel),
		OrganizationID: data.OrganizationID,
		Permissions:    permissions,
		IsEnabled:      data.IsEnabled,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}
