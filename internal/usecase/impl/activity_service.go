package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "trackivity/internal/delivery/context"
	"trackivity/internal/domain/entity"
	domainerrors "trackivity/internal/domain/errors"
	"trackivity/internal/domain/repository"
	"trackivity/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// allowedStatusTransitions defines the activity lifecycle. Cancelled and
// completed are terminal.
var allowedStatusTransitions = map[entity.ActivityStatus][]entity.ActivityStatus{
	entity.ActivityStatusDraft:     {entity.ActivityStatusPublished, entity.ActivityStatusCancelled},
	entity.ActivityStatusPublished: {entity.ActivityStatusOngoing, entity.ActivityStatusCancelled},
	entity.ActivityStatusOngoing:   {entity.ActivityStatusCompleted, entity.ActivityStatusCancelled},
}

// activityService implements the ActivityUsecase interface.
type activityService struct {
	txManager         repository.TransactionManager
	activityRepo      repository.ActivityRepository
	participationRepo repository.ParticipationRepository
	logger            *slog.Logger
}

// ActivityServiceParams holds dependencies for activityService, injected by Fx.
type ActivityServiceParams struct {
	fx.In

	TxManager         repository.TransactionManager
	ActivityRepo      repository.ActivityRepository
	ParticipationRepo repository.ParticipationRepository
	Logger            *slog.Logger
}

// NewActivityService is the constructor for activityService.
func NewActivityService(params ActivityServiceParams) usecase.ActivityUsecase {
	return &activityService{
		txManager:         params.TxManager,
		activityRepo:      params.ActivityRepo,
		participationRepo: params.ParticipationRepo,
		logger:            params.Logger,
	}
}

func (srv *activityService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create persists a new activity in draft status.
func (srv *activityService) Create(ctx context.Context, input usecase.CreateActivityInput) (*entity.Activity, error) {
	if !input.EndTime.After(input.StartTime) {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("activity must end after it starts")
	}

	activity := &entity.Activity{
		OrganizationID:  input.OrganizationID,
		Title:           input.Title,
		Description:     input.Description,
		Location:        input.Location,
		MaxParticipants: input.MaxParticipants,
		Hours:           input.Hours,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		Status:          entity.ActivityStatusDraft,
		CreatedBy:       input.CreatedBy,
	}

	if err := srv.activityRepo.Create(ctx, activity); err != nil {
		srv.log(ctx).Error("Failed to create activity", slog.Any("error", err))

		return nil, errors.Wrap(err, "create activity")
	}

	srv.log(ctx).Info("Activity created", slog.Any("activityID", activity.ID))

	return activity, nil
}

// Update edits an activity's details.
func (srv *activityService) Update(ctx context.Context, id uuid.UUID, input usecase.UpdateActivityInput) (*entity.Activity, error) {
	activity, err := srv.findActivity(ctx, id)
	if err != nil {
		return nil, err
	}

	applyActivityUpdate(activity, input)

	if !activity.EndTime.After(activity.StartTime) {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("activity must end after it starts")
	}

	if err := srv.activityRepo.Update(ctx, activity); err != nil {
		srv.log(ctx).Error("Failed to update activity", slog.Any("activityID", id), slog.Any("error", err))

		return nil, errors.Wrap(err, "update activity")
	}

	return activity, nil
}

// ChangeStatus moves an activity along its lifecycle.
func (srv *activityService) ChangeStatus(ctx context.Context, id uuid.UUID, status entity.ActivityStatus) (*entity.Activity, error) {
	if !status.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("unknown activity status")
	}

	activity, err := srv.findActivity(ctx, id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(activity.Status, status) {
		return nil, domainerrors.ErrInvalidStatusTransition.WrapMessage(
			"cannot move from " + activity.Status.String() + " to " + status.String())
	}

	if err := srv.activityRepo.UpdateStatus(ctx, id, status); err != nil {
		srv.log(ctx).Error("Failed to change activity status", slog.Any("activityID", id), slog.Any("error", err))

		return nil, errors.Wrap(err, "update activity status")
	}

	srv.log(ctx).Info("Activity status changed",
		slog.Any("activityID", id),
		slog.String("from", activity.Status.String()),
		slog.String("to", status.String()),
	)

	activity.Status = status

	return activity, nil
}

// Get returns a single activity.
func (srv *activityService) Get(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	return srv.findActivity(ctx, id)
}

// List returns activities matching the filter.
func (srv *activityService) List(ctx context.Context, filter repository.ActivityListFilter) ([]*entity.Activity, error) {
	activities, err := srv.activityRepo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list activities")
	}

	return activities, nil
}

// Join registers the user for an activity ahead of time. Capacity and the
// duplicate check run inside one transaction so two concurrent joins cannot
// both slip past the limit.
func (srv *activityService) Join(ctx context.Context, userID, activityID uuid.UUID) (*entity.Participation, error) {
	activity, err := srv.findActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	if activity.Status != entity.ActivityStatusPublished && activity.Status != entity.ActivityStatusOngoing {
		return nil, domainerrors.ErrInvalidStatusTransition.WrapMessage("activity is not open for registration")
	}

	participation := &entity.Participation{
		UserID:       userID,
		ActivityID:   activityID,
		Status:       entity.ParticipationStatusRegistered,
		RegisteredAt: time.Now(),
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		participationRepo := repoFactory.NewParticipationRepository()

		if activity.MaxParticipants > 0 {
			count, err := participationRepo.CountByActivity(ctx, activityID)
			if err != nil {
				return errors.Wrap(err, "count participants")
			}
			if count >= activity.MaxParticipants {
				return domainerrors.ErrActivityFull
			}
		}

		if err := participationRepo.Create(ctx, participation); err != nil {
			if errors.Is(err, repository.ErrDuplicateParticipation) {
				return domainerrors.ErrAlreadyJoined
			}

			return errors.Wrap(err, "create participation")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("User joined activity", slog.Any("userID", userID), slog.Any("activityID", activityID))

	return participation, nil
}

// MyParticipations returns the user's participation history.
func (srv *activityService) MyParticipations(ctx context.Context, userID uuid.UUID) ([]*entity.Participation, error) {
	participations, err := srv.participationRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list participations")
	}

	return participations, nil
}

func (srv *activityService) findActivity(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	activity, err := srv.activityRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrActivityNotFound) {
			return nil, domainerrors.ErrActivityNotFound
		}

		return nil, errors.Wrap(err, "find activity")
	}

	return activity, nil
}

func applyActivityUpdate(activity *entity.Activity, input usecase.UpdateActivityInput) {
	if input.Title != nil {
		activity.Title = *input.Title
	}
	if input.Description != nil {
		activity.Description = *input.Description
	}
	if input.Location != nil {
		activity.Location = *input.Location
	}
	if input.MaxParticipants != nil {
		activity.MaxParticipants = *input.MaxParticipants
	}
	if input.Hours != nil {
		activity.Hours = *input.Hours
	}
	if input.StartTime != nil {
		activity.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		activity.EndTime = *input.EndTime
	}
}

func transitionAllowed(from, to entity.ActivityStatus) bool {
	for _, allowed := range allowedStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}

	return false
}
