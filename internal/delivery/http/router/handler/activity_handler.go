package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"trackivity/internal/delivery/http/middleware"
	"trackivity/internal/delivery/http/response"
	"trackivity/internal/domain/entity"
	"trackivity/internal/domain/repository"
	"trackivity/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ActivityHandler holds dependencies for activity management handlers.
type ActivityHandler struct {
	uc     usecase.ActivityUsecase
	logger *slog.Logger
}

// NewActivityHandler is the constructor for ActivityHandler, injected by Fx.
func NewActivityHandler(uc usecase.ActivityUsecase, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{uc: uc, logger: logger}
}

type createActivityRequest struct {
	OrganizationID  uuid.UUID `json:"organization_id" validate:"required"`
	Title           string    `json:"title" validate:"required,max=255"`
	Description     string    `json:"description"`
	Location        string    `json:"location" validate:"max=255"`
	MaxParticipants int       `json:"max_participants" validate:"gte=0"`
	Hours           int       `json:"hours" validate:"gte=0"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	EndTime         time.Time `json:"end_time" validate:"required"`
}

type updateActivityRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Location        *string    `json:"location"`
	MaxParticipants *int       `json:"max_participants"`
	Hours           *int       `json:"hours"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type activityView struct {
	ID              uuid.UUID `json:"id"`
	OrganizationID  uuid.UUID `json:"organization_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Location        string    `json:"location,omitempty"`
	MaxParticipants int       `json:"max_participants"`
	Hours           int       `json:"hours"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type participationView struct {
	ID           uuid.UUID  `json:"id"`
	ActivityID   uuid.UUID  `json:"activity_id"`
	Status       string     `json:"status"`
	RegisteredAt time.Time  `json:"registered_at"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
}

// Create handles activity creation by an administrator.
func (h *ActivityHandler) Create(c echo.Context) error {
	authCtx, ok := middleware.CurrentAuth(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	var input createActivityRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid activity input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	activity, err := h.uc.Create(c.Request().Context(), usecase.CreateActivityInput{
		OrganizationID:  input.OrganizationID,
		Title:           input.Title,
		Description:     input.Description,
		Location:        input.Location,
		MaxParticipants: input.MaxParticipants,
		Hours:           input.Hours,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		CreatedBy:       authCtx.Claims.UserID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toActivityView(activity), "Activity created")
}

// Update handles editing an activity's details.
func (h *ActivityHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid activity ID")
	}

	var input updateActivityRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid activity input")
	}

	activity, err := h.uc.Update(c.Request().Context(), id, usecase.UpdateActivityInput{
		Title:           input.Title,
		Description:     input.Description,
		Location:        input.Location,
		MaxParticipants: input.MaxParticipants,
		Hours:           input.Hours,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toActivityView(activity), "Activity updated")
}

// ChangeStatus moves an activity along its lifecycle.
func (h *ActivityHandler) ChangeStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid activity ID")
	}

	var input changeStatusRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid status input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	activity, err := h.uc.ChangeStatus(c.Request().Context(), id, entity.ActivityStatus(input.Status))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toActivityView(activity), "Activity status changed")
}

// Get returns a single activity.
func (h *ActivityHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid activity ID")
	}

	activity, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toActivityView(activity), "")
}

// List returns activities, optionally filtered by status or organization.
func (h *ActivityHandler) List(c echo.Context) error {
	filter := repository.ActivityListFilter{}

	if raw := c.QueryParam("organization_id"); raw != "" {
		orgID, err := uuid.Parse(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid organization ID")
		}
		filter.OrganizationID = &orgID
	}

	if raw := c.QueryParam("status"); raw != "" {
		status := entity.ActivityStatus(raw)
		if !status.IsValid() {
			return response.BadRequest(c, "INVALID_INPUT", "Unknown activity status")
		}
		filter.Status = status
	}

	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return response.BadRequest(c, "INVALID_INPUT", "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	if raw := c.QueryParam("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return response.BadRequest(c, "INVALID_INPUT", "offset must be a non-negative integer")
		}
		filter.Offset = offset
	}

	activities, err := h.uc.List(c.Request().Context(), filter)
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]activityView, 0, len(activities))
	for _, activity := range activities {
		views = append(views, toActivityView(activity))
	}

	return response.Success(c, http.StatusOK, views, "")
}

// Join registers the authenticated user for an activity.
func (h *ActivityHandler) Join(c echo.Context) error {
	authCtx, ok := middleware.CurrentAuth(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid activity ID")
	}

	participation, err := h.uc.Join(c.Request().Context(), authCtx.Claims.UserID, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toParticipationView(participation), "Joined activity")
}

// MyParticipations returns the authenticated user's participation history.
func (h *ActivityHandler) MyParticipations(c echo.Context) error {
	authCtx, ok := middleware.CurrentAuth(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	participations, err := h.uc.MyParticipations(c.Request().Context(), authCtx.Claims.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]participationView, 0, len(participations))
	for _, participation := range participations {
		views = append(views, toParticipationView(participation))
	}

	return response.Success(c, http.StatusOK, views, "")
}

func toActivityView(activity *entity.Activity) activityView {
	return activityView{
		ID:              activity.ID,
		OrganizationID:  activity.OrganizationID,
		Title:           activity.Title,
		Description:     activity.Description,
		Location:        activity.Location,
		MaxParticipants: activity.MaxParticipants,
		Hours:           activity.Hours,
		StartTime:       activity.StartTime,
		EndTime:         activity.EndTime,
		Status:          activity.Status.String(),
		CreatedAt:       activity.CreatedAt,
	}
}

func toParticipationView(participation *entity.Participation) participationView {
	return participationView{
		ID:           participation.ID,
		ActivityID:   participation.ActivityID,
		Status:       participation.Status.String(),
		RegisteredAt: participation.RegisteredAt,
		CheckedInAt:  participation.CheckedInAt,
		CheckedOutAt: participation.CheckedOutAt,
	}
}
