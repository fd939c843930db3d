package handler

import (
	"log/slog"
	"net/http"
	"time"

	"trackivity/internal/delivery/http/middleware"
	"trackivity/internal/delivery/http/response"
	"trackivity/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CheckpointHandler holds dependencies for attendance scan handlers.
type CheckpointHandler struct {
	uc     usecase.CheckpointUsecase
	logger *slog.Logger
}

// NewCheckpointHandler is the constructor for CheckpointHandler, injected by Fx.
func NewCheckpointHandler(uc usecase.CheckpointUsecase, logger *slog.Logger) *CheckpointHandler {
	return &CheckpointHandler{uc: uc, logger: logger}
}

type scanRequest struct {
	QRData string `json:"qr_data" validate:"required"`
}

type studentView struct {
	ID        uuid.UUID `json:"id"`
	StudentID string    `json:"student_id"`
	FullName  string    `json:"full_name"`
}

// scanResultView is the scanner UI contract. Rejected scans still return
// HTTP 200; Success and Category tell the operator what happened.
type scanResultView struct {
	Success      bool         `json:"success"`
	Code         string       `json:"code"`
	Category     string       `json:"category,omitempty"`
	Message      string       `json:"message"`
	Student      *studentView `json:"student,omitempty"`
	Status       string       `json:"status,omitempty"`
	CheckedInAt  *time.Time   `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time   `json:"checked_out_at,omitempty"`
}

// CheckIn processes a check-in scan at an activity.
func (h *CheckpointHandler) CheckIn(c echo.Context) error {
	return h.scan(c, usecase.ScanDirectionCheckIn)
}

// CheckOut processes a check-out scan at an activity.
func (h *CheckpointHandler) CheckOut(c echo.Context) error {
	return h.scan(c, usecase.ScanDirectionCheckOut)
}

func (h *CheckpointHandler) scan(c echo.Context, direction usecase.ScanDirection) error {
	authCtx, ok := middleware.CurrentAuth(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid activity ID")
	}

	var input scanRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid scan input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	result, err := h.uc.Scan(c.Request().Context(), usecase.ScanInput{
		ActivityID: activityID,
		QRData:     input.QRData,
		Direction:  direction,
		ScannedBy:  authCtx.Claims.UserID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, toScanResultView(result))
}

func toScanResultView(result *usecase.ScanResult) scanResultView {
	view := scanResultView{
		Success:      result.Success,
		Code:         string(result.Code),
		Category:     string(result.Category),
		Message:      result.Message,
		Status:       result.Status.String(),
		CheckedInAt:  result.CheckedInAt,
		CheckedOutAt: result.CheckedOutAt,
	}

	if result.Student != nil {
		view.Student = &studentView{
			ID:        result.Student.ID,
			StudentID: result.Student.StudentID,
			FullName:  result.Student.FullName,
		}
	}

	return view
}
