// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"trackivity/config"
	"trackivity/internal/delivery/http/middleware"
	"trackivity/internal/delivery/http/response"
	"trackivity/internal/domain/entity"
	"trackivity/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	uc           usecase.AuthUsecase
	logger       *slog.Logger
	cookieDomain string
	production   bool
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, logger *slog.Logger, cfg *config.Config) *AuthHandler {
	cookieDomain := ""
	if cfg.Auth != nil {
		cookieDomain = cfg.Auth.CookieDomain
	}

	return &AuthHandler{
		uc:           uc,
		logger:       logger,
		cookieDomain: cookieDomain,
		production:   cfg.Env.Env == "production",
	}
}

type registerRequest struct {
	StudentID string `json:"student_id" validate:"required,min=4,max=20"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	Prefix    string `json:"prefix"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

type roleView struct {
	AdminLevel     string     `json:"admin_level"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
}

type userView struct {
	ID          uuid.UUID  `json:"id"`
	StudentID   string     `json:"student_id"`
	Email       string     `json:"email"`
	Prefix      string     `json:"prefix,omitempty"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       string     `json:"phone,omitempty"`
	Status      string     `json:"status"`
	AdminRole   *roleView  `json:"admin_role,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	LoginCount  int        `json:"login_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userView  `json:"user"`
}

// Register handles the student registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var input registerRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	output, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		StudentID: input.StudentID,
		Email:     input.Email,
		Password:  input.Password,
		Prefix:    input.Prefix,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toUserView(output.User), "User registered successfully")
}

// Login handles the login request and sets the session cookie for browsers.
func (h *AuthHandler) Login(c echo.Context) error {
	var input loginRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	output, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Identifier: input.Identifier,
		Password:   input.Password,
		RememberMe: input.RememberMe,
		IPAddress:  c.RealIP(),
		UserAgent:  c.Request().UserAgent(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSessionCookie(c, output.Token, output.ExpiresAt)

	return response.Success(c, http.StatusOK, loginResponse{
		Token:     output.Token,
		ExpiresAt: output.ExpiresAt,
		User:      toUserView(output.User),
	}, "Login successful")
}

// Logout deactivates the current session and clears the cookie. Calling it
// with an already dead session still succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	authCtx, ok := middleware.CurrentAuth(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	if err := h.uc.Logout(c.Request().Context(), authCtx.Session.ID); err != nil {
		return errors.WithStack(err)
	}

	h.clearSessionCookie(c)

	return response.Success(c, http.StatusOK, map[string]string{"message": "Successfully logged out"}, "Logout successful")
}

// Me returns the current user's profile, read fresh from storage.
func (h *AuthHandler) Me(c echo.Context) error {
	authCtx, ok := middleware.CurrentAuth(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	user, err := h.uc.Me(c.Request().Context(), authCtx.Claims.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserView(user), "")
}

// ForgotPassword opens a password reset flow. The response is identical
// whether or not the email exists; outside production the token is echoed
// back since no mail delivery is wired up.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var input forgotPasswordRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	token, err := h.uc.ForgotPassword(c.Request().Context(), input.Email)
	if err != nil {
		return errors.WithStack(err)
	}

	data := map[string]string{"message": "If the email exists, a reset link has been sent"}
	if !h.production && token != "" {
		data["reset_token"] = token
	}

	return response.Success(c, http.StatusOK, data, "")
}

// ResetPassword redeems a reset token and replaces the password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var input resetPasswordRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	err := h.uc.ResetPassword(c.Request().Context(), usecase.ResetPasswordInput{
		Token:       input.Token,
		NewPassword: input.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Password has been reset"}, "")
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.cookieDomain,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	})
}

func toUserView(user *entity.User) userView {
	view := userView{
		ID:          user.ID,
		StudentID:   user.StudentID,
		Email:       user.Email,
		Prefix:      user.Prefix,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Phone:       user.Phone,
		Status:      user.Status.String(),
		LastLoginAt: user.LastLoginAt,
		LoginCount:  user.LoginCount,
		CreatedAt:   user.CreatedAt,
	}

	if user.AdminRole != nil && user.AdminRole.IsEnabled {
		view.AdminRole = &roleView{
			AdminLevel:     user.AdminRole.AdminLevel.String(),
			OrganizationID: user.AdminRole.OrganizationID,
		}
	}

	return view
}
