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

// activityRepository implements the domain.ActivityRepository interface using GORM.
type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository is the constructor for activityRepository.
func NewActivityRepository(db *gorm.DB) repository.ActivityRepository {
	return &activityRepository{db: db}
}

// FindByID retrieves a single activity by its unique ID.
func (repo *activityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	var activityM model.ActivityModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&activityM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrActivityNotFound
		}

		return nil, errors.Wrap(err, "failed to find activity by id")
	}

	return toActivityDomain(&activityM), nil
}

// List retrieves activities matching the filter, newest first.
func (repo *activityRepository) List(ctx context.Context, filter repository.ActivityListFilter) ([]*entity.Activity, error) {
	query := repo.db.WithContext(ctx).Model(&model.ActivityModel{})

	if filter.OrganizationID != nil {
		query = query.Where("organization_id = ?", *filter.OrganizationID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var activityMs []model.ActivityModel
	if err := query.Order("start_time DESC").Find(&activityMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list activities")
	}

	activities := make([]*entity.Activity, 0, len(activityMs))
	for i := range activityMs {
		activities = append(activities, toActivityDomain(&activityMs[i]))
	}

	return activities, nil
}

// Create persists a new activity.
func (repo *activityRepository) Create(ctx context.Context, activity *entity.Activity) error {
	activityM := fromActivityDomain(activity)

	if err := repo.db.WithContext(ctx).Create(activityM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrActivityNotFound.WrapMessage("invalid organization reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create activity")
	}

	activity.ID = activityM.ID
	activity.CreatedAt = activityM.CreatedAt
	activity.UpdatedAt = activityM.UpdatedAt

	return nil
}

// Update modifies an existing activity.
func (repo *activityRepository) Update(ctx context.Context, activity *entity.Activity) error {
	activityM := fromActivityDomain(activity)

	if err := repo.db.WithContext(ctx).Save(activityM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to update activity")
	}

	activity.UpdatedAt = activityM.UpdatedAt

	return nil
}

// UpdateStatus moves an activity to a new lifecycle status.
func (repo *activityRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ActivityStatus) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ActivityModel{}).
		Where("id = ?", id).
		Update("status", status.String())

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update activity status")
	}
	if result.RowsAffected == 0 {
		return repository.ErrActivityNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toActivityDomain converts a GORM ActivityModel to a domain Activity entity.
func toActivityDomain(data *model.ActivityModel) *entity.Activity {
	if data == nil {
		return nil
	}

	return &entity.Activity{
		ID:              data.ID,
		OrganizationID:  data.OrganizationID,
		Title:           data.Title,
		Description:     data.Description,
		Location:        data.Location,
		MaxParticipants: data.MaxParticipants,
		Hours:           data.Hours,
		StartTime:       data.StartTime,
		EndTime:         data.EndTime,
		Status:          entity.ActivityStatus(data.Status),
		CreatedBy:       data.CreatedBy,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

// fromActivityDomain converts a domain Activity entity to a GORM ActivityModel.
func fromActivityDomain(data *entity.Activity) *model.ActivityModel {
	if data == nil {
		return nil
	}

	return &model.ActivityModel{
		ID:              data.ID,
		OrganizationID:  data.OrganizationID,
		Title:           data.Title,
		Description:     data.Description,
		Location:        data.Location,
		MaxParticipants: data.MaxParticipants,
		Hours:           data.Hours,
		StartTime:       data.StartTime,
		EndTime:         data.EndTime,
		Status:          data.Status.String(),
		CreatedBy:       data.CreatedBy,
		CreatedAt:       data.CreatedAt,
	}
}
