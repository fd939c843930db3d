package auth

import (
	"testing"
	"time"

	"trackivity/config"
	"trackivity/internal/domain/entity"
	"trackivity/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T, secret string) service.TokenService {
	t.Helper()

	cfg := &config.Config{
		Auth: &config.AuthConfig{
			SessionTTL:    7 * 24 * time.Hour,
			RememberMeTTL: 30 * 24 * time.Hour,
			ScanTokenTTL:  180 * time.Second,
		},
	}
	cfg.SecretKey.Session = secret

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	return svc
}

func testUser() *entity.User {
	return &entity.User{
		ID:        uuid.New(),
		StudentID: "6401234567",
		Email:     "ada@example.edu",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Status:    entity.UserStatusActive,
	}
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Auth: &config.AuthConfig{}}

	_, err := NewJWTService(cfg)

	assert.Error(t, err)
}

func TestJWTService_SessionToken(t *testing.T) {
	t.Parallel()

	t.Run("round trip preserves the claims", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t, "test-secret")
		user := testUser()
		sessionID := uuid.New().String()

		token, err := svc.GenerateSessionToken(user, sessionID, time.Now().Add(time.Hour))
		require.NoError(t, err)

		claims, err := svc.ValidateSessionToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, sessionID, claims.SessionID)
		assert.Equal(t, "6401234567", claims.Profile.StudentID)
		assert.Equal(t, "ada@example.edu", claims.Profile.Email)
		assert.Nil(t, claims.Role)
	})

	t.Run("embeds an enabled admin role", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t, "test-secret")
		user := testUser()
		orgID := uuid.New()
		user.AdminRole = &entity.AdminRole{
			AdminLevel:     entity.AdminLevelOrganization,
			OrganizationID: &orgID,
			IsEnabled:      true,
		}

		token, err := svc.GenerateSessionToken(user, uuid.New().String(), time.Now().Add(time.Hour))
		require.NoError(t, err)

		claims, err := svc.ValidateSessionToken(token)
		require.NoError(t, err)
		require.NotNil(t, claims.Role)
		assert.Equal(t, entity.AdminLevelOrganization, claims.Role.AdminLevel)
		require.NotNil(t, claims.Role.OrganizationID)
		assert.Equal(t, orgID, *claims.Role.OrganizationID)
	})

	t.Run("a disabled admin role is omitted", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t, "test-secret")
		user := testUser()
		user.AdminRole = &entity.AdminRole{AdminLevel: entity.AdminLevelSuper, IsEnabled: false}

		token, err := svc.GenerateSessionToken(user, uuid.New().String(), time.Now().Add(time.Hour))
		require.NoError(t, err)

		claims, err := svc.ValidateSessionToken(token)
		require.NoError(t, err)
		assert.Nil(t, claims.Role)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t, "test-secret")

		token, err := svc.GenerateSessionToken(testUser(), uuid.New().String(), time.Now().Add(-time.Minute))
		require.NoError(t, err)

		_, err = svc.ValidateSessionToken(token)
		assert.ErrorIs(t, err, service.ErrTokenExpired)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t, "test-secret")
		other := newTestJWTService(t, "other-secret")

		token, err := other.GenerateSessionToken(testUser(), uuid.New().String(), time.Now().Add(time.Hour))
		require.NoError(t, err)

		_, err = svc.ValidateSessionToken(token)
		assert.ErrorIs(t, err, service.ErrTokenMalformed)
	})

	t.Run("garbage input", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t, "test-secret")

		_, err := svc.ValidateSessionToken("not.a.jwt")
		assert.ErrorIs(t, err, service.ErrTokenMalformed)
	})
}

func TestJWTService_ScanToken(t *testing.T) {
	t.Parallel()

	t.Run("round trip preserves the claims and mints a jti", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t, "test-secret")
		userID := uuid.New()
		sessionID := uuid.New().String()

		token, expiresAt, err := svc.GenerateScanToken(userID, sessionID)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(180*time.Second), expiresAt, 5*time.Second)

		claims, err := svc.ValidateScanToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, sessionID, claims.SessionID)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("repeated generations yield distinct tokens", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t, "test-secret")
		userID := uuid.New()
		sessionID := uuid.New().String()

		first, _, err := svc.GenerateScanToken(userID, sessionID)
		require.NoError(t, err)
		second, _, err := svc.GenerateScanToken(userID, sessionID)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("expired scan token", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			Auth: &config.AuthConfig{
				SessionTTL:    time.Hour,
				RememberMeTTL: time.Hour,
				ScanTokenTTL:  -time.Minute,
			},
		}
		cfg.SecretKey.Session = "test-secret"
		svc, err := NewJWTService(cfg)
		require.NoError(t, err)

		token, _, err := svc.GenerateScanToken(uuid.New(), uuid.New().String())
		require.NoError(t, err)

		_, err = svc.ValidateScanToken(token)
		assert.ErrorIs(t, err, service.ErrTokenExpired)
	})
}

func TestJWTService_TokenTypesDoNotCross(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, "test-secret")

	scanToken, _, err := svc.GenerateScanToken(uuid.New(), uuid.New().String())
	require.NoError(t, err)
	_, err = svc.ValidateSessionToken(scanToken)
	assert.ErrorIs(t, err, service.ErrTokenMalformed)

	sessionToken, err := svc.GenerateSessionToken(testUser(), uuid.New().String(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.ValidateScanToken(sessionToken)
	assert.ErrorIs(t, err, service.ErrTokenMalformed)
}

func TestJWTService_SessionDuration(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, "test-secret")

	assert.Equal(t, 7*24*time.Hour, svc.SessionDuration(false))
	assert.Equal(t, 30*24*time.Hour, svc.SessionDuration(true))
}
