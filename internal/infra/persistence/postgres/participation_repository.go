package postgres

import (
	"context"

	"trackivity/internal/domain/entity"
	domainerrors "trackivity/internal/domain/errors"
	"trackivity/internal/domain/repository"
	"trackivity/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// participationRepository implements the domain.ParticipationRepository interface using GORM.
type participationRepository struct {
	db *gorm.DB
}

// NewParticipationRepository is the constructor for participationRepository.
func NewParticipationRepository(db *gorm.DB) repository.ParticipationRepository {
	return &participationRepository{db: db}
}

// FindByUserAndActivity retrieves the participation row for a pair.
func (repo *participationRepository) FindByUserAndActivity(ctx context.Context, userID, activityID uuid.UUID) (*entity.Participation, error) {
	var participationM model.ParticipationModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		First(&participationM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrParticipationNotFound
		}

		return nil, errors.Wrap(err, "failed to find participation")
	}

	return toParticipationDomain(&participationM), nil
}

// FindByActivity retrieves all participations for an activity.
func (repo *participationRepository) FindByActivity(ctx context.Context, activityID uuid.UUID) ([]*entity.Participation, error) {
	return repo.findMany(ctx, "activity_id = ?", activityID)
}

// FindByUser retrieves all participations for a user, newest first.
func (repo *participationRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Participation, error) {
	return repo.findMany(ctx, "user_id = ?", userID)
}

func (repo *participationRepository) findMany(ctx context.Context, cond string, arg any) ([]*entity.Participation, error) {
	var participationMs []model.ParticipationModel
	err := repo.db.WithContext(ctx).
		Where(cond, arg).
		Order("registered_at DESC").
		Find(&participationMs).Error

	if err != nil {
		return nil, errors.Wrap(err, "failed to list participations")
	}

	participations := make([]*entity.Participation, 0, len(participationMs))
	for i := range participationMs {
		participations = append(participations, toParticipationDomain(&participationMs[i]))
	}

	return participations, nil
}

// CountByActivity returns the number of participants in an activity.
func (repo *participationRepository) CountByActivity(ctx context.Context, activityID uuid.UUID) (int, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.ParticipationModel{}).
		Where("activity_id = ?", activityID).
		Count(&count).Error

	if err != nil {
		return 0, errors.Wrap(err, "failed to count participations")
	}

	return int(count), nil
}

// Create persists a new participation row.
func (repo *participationRepository) Create(ctx context.Context, participation *entity.Participation) error {
	participationM := fromParticipationDomain(participation)

	if err := repo.db.WithContext(ctx).Create(participationM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateParticipation
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "invalid user or activity reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create participation")
	}

	participation.ID = participationM.ID
	participation.CreatedAt = participationM.CreatedAt
	participation.UpdatedAt = participationM.UpdatedAt

	return nil
}

// Update modifies an existing participation row.
func (repo *participationRepository) Update(ctx context.Context, participation *entity.Participation) error {
	participationM := fromParticipationDomain(participation)

	if err := repo.db.WithContext(ctx).Save(participationM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to update participation")
	}

	participation.UpdatedAt = participationM.UpdatedAt

	return nil
}

// --- Mapper Functions ---

// toParticipationDomain converts a GORM ParticipationModel to a domain Participation entity.
func toParticipationDomain(data *model.ParticipationModel) *entity.Participation {
	if data == nil {
		return nil
	}

	return &entity.Participation{
		ID:           data.ID,
		UserID:       data.UserID,
		ActivityID:   data.ActivityID,
		Status:       entity.ParticipationStatus(data.Status),
		RegisteredAt: data.RegisteredAt,
		CheckedInAt:  data.CheckedInAt,
		CheckedOutAt: data.CheckedOutAt,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromParticipationDomain converts a domain Participation entity to a GORM ParticipationModel.
func fromParticipationDomain(data *entity.Participation) *model.ParticipationModel {
	if data == nil {
		return nil
	}

	return &model.ParticipationModel{
		ID:           data.ID,
		UserID:       data.UserID,
		ActivityID:   data.ActivityID,
		Status:       data.Status.String(),
		RegisteredAt: data.RegisteredAt,
		CheckedInAt:  data.CheckedInAt,
		CheckedOutAt: data.CheckedOutAt,
		CreatedAt:    data.CreatedAt,
	}
}
