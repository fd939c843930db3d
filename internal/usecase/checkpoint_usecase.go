package usecase

import (
	"context"
	"time"

	"trackivity/internal/domain/entity"

	"github.com/google/uuid"
)

// ScanDirection selects which checkpoint a scan targets.
type ScanDirection string

const (
	ScanDirectionCheckIn  ScanDirection = "checkin"
	ScanDirectionCheckOut ScanDirection = "checkout"
)

// IsValid checks if the ScanDirection is a valid value.
func (d ScanDirection) IsValid() bool {
	return d == ScanDirectionCheckIn || d == ScanDirectionCheckOut
}

// OutcomeCategory classifies scan outcomes for scanner UIs: errors are
// retryable faults, warnings are benign repeats, and flow violations are
// out-of-order scans the operator should notice.
type OutcomeCategory string

const (
	OutcomeCategoryError         OutcomeCategory = "error"
	OutcomeCategoryWarning       OutcomeCategory = "warning"
	OutcomeCategoryFlowViolation OutcomeCategory = "flow_violation"
)

// OutcomeCode identifies the result of a checkpoint scan.
type OutcomeCode string

const (
	OutcomeCheckinSuccess  OutcomeCode = "CHECKIN_SUCCESS"
	OutcomeCheckoutSuccess OutcomeCode = "CHECKOUT_SUCCESS"

	OutcomeAlreadyCheckedIn  OutcomeCode = "ALREADY_CHECKED_IN"
	OutcomeAlreadyCheckedOut OutcomeCode = "ALREADY_CHECKED_OUT"
	OutcomeAlreadyCompleted  OutcomeCode = "ALREADY_COMPLETED"
	OutcomeNotCheckedIn      OutcomeCode = "NOT_CHECKED_IN"
	OutcomeNotCheckedInYet   OutcomeCode = "NOT_CHECKED_IN_YET"

	OutcomeActivityNotOngoing      OutcomeCode = "ACTIVITY_NOT_ONGOING"
	OutcomeActivityExpired         OutcomeCode = "ACTIVITY_EXPIRED"
	OutcomeActivityNotFound        OutcomeCode = "ACTIVITY_NOT_FOUND"
	OutcomeStudentNotFound         OutcomeCode = "STUDENT_NOT_FOUND"
	OutcomeStudentAccountInactive  OutcomeCode = "STUDENT_ACCOUNT_INACTIVE"
	OutcomeQRExpired               OutcomeCode = "QR_EXPIRED"
	OutcomeQRInvalid               OutcomeCode = "QR_INVALID"
	OutcomeMaxParticipantsReached  OutcomeCode = "MAX_PARTICIPANTS_REACHED"
)

// ScanInput is one presented credential at one checkpoint.
type ScanInput struct {
	ActivityID uuid.UUID
	QRData     string
	Direction  ScanDirection
	ScannedBy  uuid.UUID
}

// StudentSummary is the slice of a student's profile a scanner UI shows.
type StudentSummary struct {
	ID        uuid.UUID
	StudentID string
	FullName  string
}

// ScanResult describes what happened to a scan. Success is true only for
// the two _SUCCESS codes; every other code reports the reason the scan did
// not change state. Flow-violation and warning outcomes are ordinary
// results, not transport errors.
type ScanResult struct {
	Success      bool
	Code         OutcomeCode
	Category     OutcomeCategory
	Message      string
	Student      *StudentSummary
	Status       entity.ParticipationStatus
	CheckedInAt  *time.Time
	CheckedOutAt *time.Time
}

// CheckpointUsecase applies the attendance state machine to scans.
type CheckpointUsecase interface {
	// Scan validates the presented credential and advances the student's
	// participation along registered -> checked_in -> checked_out. It only
	// returns an error for infrastructure failures; every business outcome,
	// including rejections, arrives as a ScanResult.
	Scan(ctx context.Context, input ScanInput) (*ScanResult, error)
}
