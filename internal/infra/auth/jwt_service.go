// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"trackivity/config"
	"trackivity/internal/domain/entity"
	"trackivity/internal/domain/service"
)

// Distinguishes the two token flavors signed with the shared secret, so a
// scan token can never pass as a session token or vice versa.
const (
	tokenTypeSession = "session"
	tokenTypeScan    = "scan"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret        []byte        // Secret key for signing both token flavors.
	sessionTTL    time.Duration // Default session lifetime.
	rememberMeTTL time.Duration // Extended lifetime for remember-me logins.
	scanTTL       time.Duration // Validity window of scan tokens.
}

type sessionTokenClaims struct {
	service.SessionClaims
	TokenType string `json:"type"`
}

type scanTokenClaims struct {
	service.ScanClaims
	TokenType string `json:"type"`
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Session == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	return &jwtService{
		secret:        []byte(cfg.SecretKey.Session),
		sessionTTL:    cfg.Auth.SessionTTL,
		rememberMeTTL: cfg.Auth.RememberMeTTL,
		scanTTL:       cfg.Auth.ScanTokenTTL,
	}, nil
}

// GenerateSessionToken creates a signed session token carrying the user's
// profile and role snapshot.
func (s *jwtService) GenerateSessionToken(user *entity.User, sessionID string, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := sessionTokenClaims{
		SessionClaims: service.SessionClaims{
			UserID:    user.ID,
			SessionID: sessionID,
			Profile: service.ProfileClaim{
				StudentID: user.StudentID,
				Email:     user.Email,
				FirstName: user.FirstName,
				LastName:  user.LastName,
			},
			Role: roleClaimFor(user),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   user.ID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
		},
		TokenType: tokenTypeSession,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign session token")
	}

	return signed, nil
}

// ValidateSessionToken checks signature, expiry, and token type.
func (s *jwtService) ValidateSessionToken(tokenString string) (*service.SessionClaims, error) {
	claims := new(sessionTokenClaims)
	if err := s.parseInto(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeSession || claims.SessionID == "" {
		return nil, service.ErrTokenMalformed
	}

	return &claims.SessionClaims, nil
}

// GenerateScanToken creates a short-lived token for attendance QR codes.
// Each call mints a fresh jti so repeated generations are distinct.
func (s *jwtService) GenerateScanToken(userID uuid.UUID, sessionID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.scanTTL)
	claims := scanTokenClaims{
		ScanClaims: service.ScanClaims{
			UserID:    userID,
			SessionID: sessionID,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID.String(),
				ID:        uuid.New().String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
		},
		TokenType: tokenTypeScan,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign scan token")
	}

	return signed, expiresAt, nil
}

// ValidateScanToken checks signature, expiry, and token type.
func (s *jwtService) ValidateScanToken(tokenString string) (*service.ScanClaims, error) {
	claims := new(scanTokenClaims)
	if err := s.parseInto(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeScan || claims.ID == "" {
		return nil, service.ErrTokenMalformed
	}

	return &claims.ScanClaims, nil
}

// SessionDuration returns the configured session lifetime.
func (s *jwtService) SessionDuration(rememberMe bool) time.Duration {
	if rememberMe {
		return s.rememberMeTTL
	}

	return s.sessionTTL
}

// parseInto parses and verifies a token string into the given claims,
// mapping library errors onto the domain sentinels.
func (s *jwtService) parseInto(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return service.ErrTokenExpired
	case err != nil:
		return service.ErrTokenMalformed
	case !token.Valid:
		return service.ErrTokenMalformed
	}

	return nil
}

func roleClaimFor(user *entity.User) *service.RoleClaim {
	if user.AdminRole == nil || !user.AdminRole.IsEnabled {
		return nil
	}

	return &service.RoleClaim{
		AdminLevel:     user.AdminRole.AdminLevel,
		OrganizationID: user.AdminRole.OrganizationID,
	}
}
