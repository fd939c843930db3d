package middleware

import (
	"strings"

	"trackivity/internal/domain/entity"
	domainerrors "trackivity/internal/domain/errors"
	"trackivity/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	// SessionCookieName is the cookie browsers carry the session token in.
	SessionCookieName = "session_token"

	// ContextKeyAuth is the echo.Context key for the validated AuthContext.
	ContextKeyAuth = "auth"
)

// AuthMiddleware validates session tokens and attaches the resulting
// AuthContext to the request. Tokens arrive either as a Bearer header
// (API clients) or as the session cookie (browsers); the header wins when
// both are present.
type AuthMiddleware struct {
	authUC usecase.AuthUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(authUC usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{authUC: authUC}
}

// Authenticate is the core middleware function that validates the session token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return domainerrors.ErrUnauthenticated
		}

		authCtx, err := m.authUC.ValidateSession(c.Request().Context(), tokenString)
		if err != nil {
			return errors.WithStack(err)
		}

		c.Set(ContextKeyAuth, authCtx)

		return next(c)
	}
}

// RequireAdmin is a middleware factory that checks the session's role
// snapshot for at least the given admin level.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireAdmin(level entity.AdminLevel) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authCtx, ok := CurrentAuth(c)
			if !ok {
				return domainerrors.ErrUnauthenticated
			}

			role := authCtx.Claims.Role
			if role == nil || !role.AdminLevel.AtLeast(level) {
				return domainerrors.ErrForbidden
			}

			return next(c)
		}
	}
}

// CurrentAuth returns the validated AuthContext set by Authenticate.
func CurrentAuth(c echo.Context) (*usecase.AuthContext, bool) {
	authCtx, ok := c.Get(ContextKeyAuth).(*usecase.AuthContext)

	return authCtx, ok
}

func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		if token := strings.TrimPrefix(authHeader, "Bearer "); token != authHeader {
			return token
		}
	}

	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}
