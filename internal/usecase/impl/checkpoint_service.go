package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "trackivity/internal/delivery/context"
	"trackivity/internal/domain/entity"
	"trackivity/internal/domain/repository"
	"trackivity/internal/domain/service"
	"trackivity/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// checkpointService implements the CheckpointUsecase interface. It is the
// only writer of participation status transitions.
type checkpointService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	activityRepo repository.ActivityRepository
	tokenService service.TokenService
	logger       *slog.Logger
}

// CheckpointServiceParams holds dependencies for checkpointService, injected by Fx.
type CheckpointServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	ActivityRepo repository.ActivityRepository
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewCheckpointService is the constructor for checkpointService.
func NewCheckpointService(params CheckpointServiceParams) usecase.CheckpointUsecase {
	return &checkpointService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		activityRepo: params.ActivityRepo,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

func (srv *checkpointService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Scan validates the presented credential and advances the student's
// participation. Every business outcome, including rejections, comes back
// as a ScanResult; the error return is reserved for infrastructure faults.
func (srv *checkpointService) Scan(ctx context.Context, input usecase.ScanInput) (*usecase.ScanResult, error) {
	claims, err := srv.tokenService.ValidateScanToken(input.QRData)
	if err != nil {
		if errors.Is(err, service.ErrTokenExpired) {
			return reject(usecase.OutcomeQRExpired, usecase.OutcomeCategoryError,
				"Scan code has expired, ask the student to refresh it"), nil
		}

		return reject(usecase.OutcomeQRInvalid, usecase.OutcomeCategoryError,
			"Scan code is not valid"), nil
	}

	student, err := srv.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return reject(usecase.OutcomeStudentNotFound, usecase.OutcomeCategoryError,
				"Student account not found"), nil
		}

		return nil, errors.Wrap(err, "find student for scan")
	}
	if !student.IsActive() {
		return reject(usecase.OutcomeStudentAccountInactive, usecase.OutcomeCategoryError,
			"Student account is not active"), nil
	}

	activity, err := srv.activityRepo.FindByID(ctx, input.ActivityID)
	if err != nil {
		if errors.Is(err, repository.ErrActivityNotFound) {
			return reject(usecase.OutcomeActivityNotFound, usecase.OutcomeCategoryError,
				"Activity not found"), nil
		}

		return nil, errors.Wrap(err, "find activity for scan")
	}

	now := time.Now()
	switch {
	case activity.Status == entity.ActivityStatusCompleted,
		activity.Status == entity.ActivityStatusCancelled,
		activity.HasEnded(now):
		return reject(usecase.OutcomeActivityExpired, usecase.OutcomeCategoryError,
			"Activity has already ended"), nil
	case !activity.IsOngoing():
		return reject(usecase.OutcomeActivityNotOngoing, usecase.OutcomeCategoryError,
			"Activity is not accepting scans right now"), nil
	}

	summary := &usecase.StudentSummary{
		ID:        student.ID,
		StudentID: student.StudentID,
		FullName:  student.FullName(),
	}

	var result *usecase.ScanResult
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		participationRepo := repoFactory.NewParticipationRepository()

		participation, err := participationRepo.FindByUserAndActivity(ctx, student.ID, activity.ID)
		switch {
		case errors.Is(err, repository.ErrParticipationNotFound):
			result, err = srv.scanWithoutParticipation(ctx, participationRepo, activity, summary, input.Direction, now)

			return err
		case err != nil:
			return errors.Wrap(err, "find participation for scan")
		}

		result, err = srv.scanWithParticipation(ctx, participationRepo, participation, summary, input.Direction, now)

		return err
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute scan transaction",
			slog.Any("activityID", activity.ID), slog.Any("studentID", student.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "execute scan transaction")
	}

	srv.log(ctx).Info("Scan processed",
		slog.Any("activityID", activity.ID),
		slog.Any("studentID", student.ID),
		slog.String("direction", string(input.Direction)),
		slog.String("outcome", string(result.Code)),
		slog.Bool("success", result.Success),
	)

	return result, nil
}

// scanWithoutParticipation handles scans by students with no prior
// registration for the activity.
func (srv *checkpointService) scanWithoutParticipation(
	ctx context.Context,
	participationRepo repository.ParticipationRepository,
	activity *entity.Activity,
	student *usecase.StudentSummary,
	direction usecase.ScanDirection,
	now time.Time,
) (*usecase.ScanResult, error) {
	if direction == usecase.ScanDirectionCheckOut {
		r := reject(usecase.OutcomeNotCheckedIn, usecase.OutcomeCategoryFlowViolation,
			"Student never checked in to this activity")
		r.Student = student

		return r, nil
	}

	if activity.MaxParticipants > 0 {
		count, err := participationRepo.CountByActivity(ctx, activity.ID)
		if err != nil {
			return nil, errors.Wrap(err, "count participants")
		}
		if count >= activity.MaxParticipants {
			r := reject(usecase.OutcomeMaxParticipantsReached, usecase.OutcomeCategoryError,
				"Activity has reached its participant limit")
			r.Student = student

			return r, nil
		}
	}

	// Walk-in: registration and check-in happen in the same instant.
	participation := &entity.Participation{
		UserID:       student.ID,
		ActivityID:   activity.ID,
		Status:       entity.ParticipationStatusCheckedIn,
		RegisteredAt: now,
		CheckedInAt:  &now,
	}
	if err := participationRepo.Create(ctx, participation); err != nil {
		// A concurrent scan won the insert; report the repeat.
		if errors.Is(err, repository.ErrDuplicateParticipation) {
			r := reject(usecase.OutcomeAlreadyCheckedIn, usecase.OutcomeCategoryWarning,
				"Student is already checked in")
			r.Student = student

			return r, nil
		}

		return nil, errors.Wrap(err, "create walk-in participation")
	}

	return &usecase.ScanResult{
		Success:     true,
		Code:        usecase.OutcomeCheckinSuccess,
		Message:     "Checked in",
		Student:     student,
		Status:      participation.Status,
		CheckedInAt: participation.CheckedInAt,
	}, nil
}

// scanWithParticipation advances an existing participation row. The status
// only ever moves forward: registered -> checked_in -> checked_out.
func (srv *checkpointService) scanWithParticipation(
	ctx context.Context,
	participationRepo repository.ParticipationRepository,
	participation *entity.Participation,
	student *usecase.StudentSummary,
	direction usecase.ScanDirection,
	now time.Time,
) (*usecase.ScanResult, error) {
	outcome := func(success bool, code usecase.OutcomeCode, category usecase.OutcomeCategory, message string) *usecase.ScanResult {
		return &usecase.ScanResult{
			Success:      success,
			Code:         code,
			Category:     category,
			Message:      message,
			Student:      student,
			Status:       participation.Status,
			CheckedInAt:  participation.CheckedInAt,
			CheckedOutAt: participation.CheckedOutAt,
		}
	}

	if direction == usecase.ScanDirectionCheckIn {
		switch participation.Status {
		case entity.ParticipationStatusRegistered:
			participation.Status = entity.ParticipationStatusCheckedIn
			participation.CheckedInAt = &now
			if err := participationRepo.Update(ctx, participation); err != nil {
				return nil, errors.Wrap(err, "record check-in")
			}

			return outcome(true, usecase.OutcomeCheckinSuccess, "", "Checked in"), nil
		case entity.ParticipationStatusCheckedIn:
			return outcome(false, usecase.OutcomeAlreadyCheckedIn, usecase.OutcomeCategoryWarning,
				"Student is already checked in"), nil
		case entity.ParticipationStatusCheckedOut:
			return outcome(false, usecase.OutcomeAlreadyCompleted, usecase.OutcomeCategoryFlowViolation,
				"Student already completed this activity"), nil
		}
	}

	switch participation.Status {
	case entity.ParticipationStatusRegistered:
		return outcome(false, usecase.OutcomeNotCheckedInYet, usecase.OutcomeCategoryFlowViolation,
			"Student has not checked in yet"), nil
	case entity.ParticipationStatusCheckedIn:
		participation.Status = entity.ParticipationStatusCheckedOut
		participation.CheckedOutAt = &now
		if err := participationRepo.Update(ctx, participation); err != nil {
			return nil, errors.Wrap(err, "record check-out")
		}

		return outcome(true, usecase.OutcomeCheckoutSuccess, "", "Checked out"), nil
	case entity.ParticipationStatusCheckedOut:
		return outcome(false, usecase.OutcomeAlreadyCheckedOut, usecase.OutcomeCategoryWarning,
			"Student is already checked out"), nil
	}

	return nil, errors.Errorf("unknown participation status %q", participation.Status)
}

func reject(code usecase.OutcomeCode, category usecase.OutcomeCategory, message string) *usecase.ScanResult {
	return &usecase.ScanResult{
		Success:  false,
		Code:     code,
		Category: category,
		Message:  message,
	}
}
