package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"trackivity/internal/delivery/http/middleware"
	"trackivity/internal/delivery/http/response"
	"trackivity/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// QRHandler holds dependencies for scan credential handlers.
type QRHandler struct {
	uc     usecase.QRUsecase
	logger *slog.Logger
}

// NewQRHandler is the constructor for QRHandler, injected by Fx.
func NewQRHandler(uc usecase.QRUsecase, logger *slog.Logger) *QRHandler {
	return &QRHandler{uc: uc, logger: logger}
}

type scanCredentialView struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	QRData    string    `json:"qr_data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Generate issues a fresh scan credential for the authenticated user.
func (h *QRHandler) Generate(c echo.Context) error {
	authCtx, ok := middleware.CurrentAuth(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	credential, err := h.uc.GenerateScanCredential(c.Request().Context(), authCtx.Claims.UserID, authCtx.Session.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, scanCredentialView{
		ID:        credential.ID,
		UserID:    credential.UserID,
		QRData:    credential.QRData,
		ExpiresAt: credential.ExpiresAt,
	}, "")
}

// Image issues a fresh scan credential and returns it rendered as a PNG.
// The expiry travels in a header since the body is the image itself.
func (h *QRHandler) Image(c echo.Context) error {
	authCtx, ok := middleware.CurrentAuth(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	size := 0
	if raw := c.QueryParam("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 2048 {
			return response.BadRequest(c, "INVALID_INPUT", "size must be a positive integer up to 2048")
		}
		size = parsed
	}

	png, credential, err := h.uc.RenderScanCredentialPNG(c.Request().Context(), authCtx.Claims.UserID, authCtx.Session.ID, size)
	if err != nil {
		return errors.WithStack(err)
	}

	c.Response().Header().Set("Cache-Control", "no-store")
	c.Response().Header().Set("X-Expires-At", credential.ExpiresAt.Format(time.RFC3339))

	return c.Blob(http.StatusOK, "image/png", png)
}
