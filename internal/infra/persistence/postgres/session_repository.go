package postgres

import (
	"context"
	"time"

	"trackivity/internal/domain/entity"
	domainerrors "trackivity/internal/domain/errors"
	"trackivity/internal/domain/repository"
	"trackivity/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// sessionRepository implements the domain.SessionRepository interface using GORM.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create persists a new session.
func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionM := fromSessionDomain(session)

	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create session")
	}

	session.CreatedAt = sessionM.CreatedAt
	session.UpdatedAt = sessionM.UpdatedAt

	return nil
}

// FindByID retrieves a session by its UUID string ID.
func (repo *sessionRepository) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	var sessionM model.SessionModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&sessionM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to find session by id")
	}

	return toSessionDomain(&sessionM), nil
}

// FindActiveByUserID retrieves all active, unexpired sessions for a user.
func (repo *sessionRepository) FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	var sessionMs []model.SessionModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, time.Now()).
		Order("created_at DESC").
		Find(&sessionMs).Error

	if err != nil {
		return nil, errors.Wrap(err, "failed to find active sessions")
	}

	sessions := make([]*entity.Session, 0, len(sessionMs))
	for i := range sessionMs {
		sessions = append(sessions, toSessionDomain(&sessionMs[i]))
	}

	return sessions, nil
}

// Deactivate flips is_active off. Zero rows affected is not an error so the
// operation stays idempotent.
func (repo *sessionRepository) Deactivate(ctx context.Context, id string) error {
	err := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ?", id).
		Update("is_active", false).Error

	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to deactivate session")
	}

	return nil
}

// DeactivateAllByUserID revokes every session belonging to a user.
func (repo *sessionRepository) DeactivateAllByUserID(ctx context.Context, userID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error

	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to deactivate user sessions")
	}

	return nil
}

// Touch updates last_seen_at for activity tracking.
func (repo *sessionRepository) Touch(ctx context.Context, id string) error {
	err := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ?", id).
		Update("last_seen_at", time.Now()).Error

	if err != nil {
		return errors.Wrap(err, "failed to touch session")
	}

	return nil
}

// DeleteExpired removes sessions past their expiry.
func (repo *sessionRepository) DeleteExpired(ctx context.Context) error {
	err := repo.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.SessionModel{}).Error

	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete expired sessions")
	}

	return nil
}

// --- Mapper Functions ---

// toSessionDomain converts a GORM SessionModel to a domain Session entity.
func toSessionDomain(data *model.SessionModel) *entity.Session {
	if data == nil {
		return nil
	}

	return &entity.Session{
		ID:         data.ID,
		UserID:     data.UserID,
		IsActive:   data.IsActive,
		Method:     entity.LoginMethod(data.LoginMethod),
		IPAddress:  data.IPAddress,
		UserAgent:  data.UserAgent,
		ExpiresAt:  data.ExpiresAt,
		CreatedAt:  data.CreatedAt,
		UpdatedAt:  data.UpdatedAt,
		LastSeenAt: data.LastSeenAt,
	}
}

// fromSessionDomain converts a domain Session entity to a GORM SessionModel.
func fromSessionDomain(data *entity.Session) *model.SessionModel {
	if data == nil {
		return nil
	}

	return &model.SessionModel{
		ID:          data.ID,
		UserID:      data.UserID,
		IsActive:    data.IsActive,
		LoginMethod: string(data.Method),
		IPAddress:   data.IPAddress,
		UserAgent:   data.UserAgent,
		ExpiresAt:   data.ExpiresAt,
		LastSeenAt:  data.LastSeenAt,
		CreatedAt:   data.CreatedAt,
	}
}
