package impl

import (
	"context"
	"testing"
	"time"

	"trackivity/internal/domain/entity"
	domainerrors "trackivity/internal/domain/errors"
	"trackivity/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authServiceFixtures struct {
	userRepo    *memUserRepo
	sessionRepo *memSessionRepo
	resetRepo   *memResetRepo
	tokens      *stubTokenService
	service     usecase.AuthUsecase
}

func createTestAuthService(t *testing.T) *authServiceFixtures {
	t.Helper()

	userRepo := newMemUserRepo()
	sessionRepo := newMemSessionRepo()
	resetRepo := newMemResetRepo()
	tokens := newStubTokenService()
	factory := &memFactory{
		userRepo:          userRepo,
		sessionRepo:       sessionRepo,
		activityRepo:      newMemActivityRepo(),
		participationRepo: newMemParticipationRepo(),
		resetRepo:         resetRepo,
	}

	service := NewAuthService(AuthServiceParams{
		TxManager:    &memTxManager{factory: factory},
		UserRepo:     userRepo,
		SessionRepo:  sessionRepo,
		ResetRepo:    resetRepo,
		Hasher:       stubHasher{},
		TokenService: tokens,
		Config:       newTestConfig(),
		Logger:       newDiscardLogger(),
	})

	return &authServiceFixtures{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		resetRepo:   resetRepo,
		tokens:      tokens,
		service:     service,
	}
}

func (f *authServiceFixtures) seedUser(t *testing.T, studentID, email, password string) *entity.User {
	t.Helper()

	return f.userRepo.put(&entity.User{
		ID:           uuid.New(),
		StudentID:    studentID,
		Email:        email,
		PasswordHash: "hashed:" + password,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Status:       entity.UserStatusActive,
	})
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates an active user with a hashed password", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)

		output, err := f.service.Register(context.Background(), usecase.RegisterInput{
			StudentID: "6401234567",
			Email:     "ada@example.edu",
			Password:  "s3cret-pass",
			FirstName: "Ada",
			LastName:  "Lovelace",
		})

		require.NoError(t, err)
		require.NotNil(t, output)
		assert.NotEqual(t, uuid.Nil, output.User.ID)
		assert.Equal(t, entity.UserStatusActive, output.User.Status)
		assert.Equal(t, "hashed:s3cret-pass", output.User.PasswordHash)
	})

	t.Run("rejects a duplicate email or student id", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		f.seedUser(t, "6401234567", "ada@example.edu", "whatever")

		_, err := f.service.Register(context.Background(), usecase.RegisterInput{
			StudentID: "6401234567",
			Email:     "other@example.edu",
			Password:  "s3cret-pass",
		})

		assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	t.Run("succeeds with email identifier", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		user := f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")

		output, err := f.service.Login(context.Background(), usecase.LoginInput{
			Identifier: "ada@example.edu",
			Password:   "s3cret-pass",
			IPAddress:  "203.0.113.9",
			UserAgent:  "scanner/1.0",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, output.Token)
		assert.Equal(t, user.ID, output.User.ID)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), output.ExpiresAt, time.Minute)

		// A live session row backs the token.
		claims, err := f.tokens.ValidateSessionToken(output.Token)
		require.NoError(t, err)
		session, err := f.sessionRepo.FindByID(context.Background(), claims.SessionID)
		require.NoError(t, err)
		assert.True(t, session.IsActive)
		assert.Equal(t, user.ID, session.UserID)
		assert.Equal(t, "203.0.113.9", session.IPAddress)
	})

	t.Run("succeeds with student id identifier", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")

		output, err := f.service.Login(context.Background(), usecase.LoginInput{
			Identifier: "6401234567",
			Password:   "s3cret-pass",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, output.Token)
	})

	t.Run("remember me extends the session lifetime", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")

		output, err := f.service.Login(context.Background(), usecase.LoginInput{
			Identifier: "ada@example.edu",
			Password:   "s3cret-pass",
			RememberMe: true,
		})

		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), output.ExpiresAt, time.Minute)
	})

	t.Run("unknown identifier and wrong password produce the same error", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")

		_, unknownErr := f.service.Login(context.Background(), usecase.LoginInput{
			Identifier: "nobody@example.edu",
			Password:   "s3cret-pass",
		})
		_, wrongPassErr := f.service.Login(context.Background(), usecase.LoginInput{
			Identifier: "ada@example.edu",
			Password:   "not-the-password",
		})

		assert.ErrorIs(t, unknownErr, domainerrors.ErrInvalidCredentials)
		assert.ErrorIs(t, wrongPassErr, domainerrors.ErrInvalidCredentials)
	})

	t.Run("rejects an inactive account even with correct credentials", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		user := f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")
		user.Status = entity.UserStatusSuspended

		_, err := f.service.Login(context.Background(), usecase.LoginInput{
			Identifier: "ada@example.edu",
			Password:   "s3cret-pass",
		})

		assert.ErrorIs(t, err, domainerrors.ErrAccountNotActive)
	})

	t.Run("reports the inactive account before checking the password", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		user := f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")
		user.Status = entity.UserStatusSuspended

		_, err := f.service.Login(context.Background(), usecase.LoginInput{
			Identifier: "ada@example.edu",
			Password:   "not-the-password",
		})

		assert.ErrorIs(t, err, domainerrors.ErrAccountNotActive)
	})

	t.Run("records login bookkeeping", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		user := f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")

		_, err := f.service.Login(context.Background(), usecase.LoginInput{
			Identifier: "ada@example.edu",
			Password:   "s3cret-pass",
		})

		require.NoError(t, err)
		assert.Equal(t, 1, user.LoginCount)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("still succeeds when login bookkeeping fails", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")
		f.userRepo.recordLoginErr = assert.AnError

		output, err := f.service.Login(context.Background(), usecase.LoginInput{
			Identifier: "ada@example.edu",
			Password:   "s3cret-pass",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, output.Token)
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Parallel()

	f := createTestAuthService(t)
	user := f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")
	output, err := f.service.Login(context.Background(), usecase.LoginInput{
		Identifier: "ada@example.edu",
		Password:   "s3cret-pass",
	})
	require.NoError(t, err)

	claims, err := f.tokens.ValidateSessionToken(output.Token)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), claims.SessionID))

	session, err := f.sessionRepo.FindByID(context.Background(), claims.SessionID)
	require.NoError(t, err)
	assert.False(t, session.IsActive)
	assert.Equal(t, user.ID, session.UserID)

	// Logging out twice is harmless.
	assert.NoError(t, f.service.Logout(context.Background(), claims.SessionID))
}

func TestAuthService_Me(t *testing.T) {
	t.Parallel()

	t.Run("returns the stored profile", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		user := f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")

		got, err := f.service.Me(context.Background(), user.ID)

		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)

		_, err := f.service.Me(context.Background(), uuid.New())

		assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	login := func(t *testing.T, f *authServiceFixtures) (*entity.User, string) {
		t.Helper()
		user := f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")
		output, err := f.service.Login(context.Background(), usecase.LoginInput{
			Identifier: "ada@example.edu",
			Password:   "s3cret-pass",
		})
		require.NoError(t, err)

		return user, output.Token
	}

	t.Run("accepts a live session and touches it", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		user, token := login(t, f)

		authCtx, err := f.service.ValidateSession(context.Background(), token)

		require.NoError(t, err)
		assert.Equal(t, user.ID, authCtx.Claims.UserID)
		assert.Equal(t, authCtx.Claims.SessionID, authCtx.Session.ID)
		assert.NotNil(t, authCtx.Session.LastSeenAt)
	})

	t.Run("rejects an unparseable token", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)

		_, err := f.service.ValidateSession(context.Background(), "garbage")

		assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
	})

	t.Run("rejects a revoked session", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		_, token := login(t, f)
		claims, err := f.tokens.ValidateSessionToken(token)
		require.NoError(t, err)
		require.NoError(t, f.sessionRepo.Deactivate(context.Background(), claims.SessionID))

		_, err = f.service.ValidateSession(context.Background(), token)

		assert.ErrorIs(t, err, domainerrors.ErrSessionRevoked)
	})

	t.Run("rejects an expired session", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		_, token := login(t, f)
		claims, err := f.tokens.ValidateSessionToken(token)
		require.NoError(t, err)
		session, err := f.sessionRepo.FindByID(context.Background(), claims.SessionID)
		require.NoError(t, err)
		session.ExpiresAt = time.Now().Add(-time.Minute)

		_, err = f.service.ValidateSession(context.Background(), token)

		assert.ErrorIs(t, err, domainerrors.ErrSessionExpired)
	})

	t.Run("rejects a token whose user does not own the session", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		_, token := login(t, f)
		claims, err := f.tokens.ValidateSessionToken(token)
		require.NoError(t, err)
		session, err := f.sessionRepo.FindByID(context.Background(), claims.SessionID)
		require.NoError(t, err)
		session.UserID = uuid.New()

		_, err = f.service.ValidateSession(context.Background(), token)

		assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
	})
}

func TestAuthService_ForgotPassword(t *testing.T) {
	t.Parallel()

	t.Run("issues a redeemable token for a known email", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		user := f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")

		rawToken, err := f.service.ForgotPassword(context.Background(), "ada@example.edu")

		require.NoError(t, err)
		require.Len(t, rawToken, 64) // 32 random bytes, hex encoded.

		record, err := f.resetRepo.FindByTokenHash(context.Background(), hashResetToken(rawToken))
		require.NoError(t, err)
		assert.Equal(t, user.ID, record.UserID)
		assert.True(t, record.IsUsable(time.Now()))
	})

	t.Run("unknown email yields no token and no error", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)

		rawToken, err := f.service.ForgotPassword(context.Background(), "nobody@example.edu")

		require.NoError(t, err)
		assert.Empty(t, rawToken)
		assert.Empty(t, f.resetRepo.tokens)
	})

	t.Run("re-requesting invalidates the previous token", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")

		first, err := f.service.ForgotPassword(context.Background(), "ada@example.edu")
		require.NoError(t, err)
		second, err := f.service.ForgotPassword(context.Background(), "ada@example.edu")
		require.NoError(t, err)
		require.NotEqual(t, first, second)

		err = f.service.ResetPassword(context.Background(), usecase.ResetPasswordInput{
			Token:       first,
			NewPassword: "brand-new-pass",
		})
		assert.ErrorIs(t, err, domainerrors.ErrResetTokenInvalid)

		err = f.service.ResetPassword(context.Background(), usecase.ResetPasswordInput{
			Token:       second,
			NewPassword: "brand-new-pass",
		})
		assert.NoError(t, err)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	t.Parallel()

	t.Run("replaces the password and revokes all sessions", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		user := f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")
		_, err := f.service.Login(context.Background(), usecase.LoginInput{
			Identifier: "ada@example.edu",
			Password:   "s3cret-pass",
		})
		require.NoError(t, err)

		rawToken, err := f.service.ForgotPassword(context.Background(), "ada@example.edu")
		require.NoError(t, err)

		err = f.service.ResetPassword(context.Background(), usecase.ResetPasswordInput{
			Token:       rawToken,
			NewPassword: "brand-new-pass",
		})
		require.NoError(t, err)

		assert.Equal(t, "hashed:brand-new-pass", user.PasswordHash)

		active, err := f.sessionRepo.FindActiveByUserID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Empty(t, active)

		// Old password no longer works, new one does.
		_, err = f.service.Login(context.Background(), usecase.LoginInput{
			Identifier: "ada@example.edu",
			Password:   "s3cret-pass",
		})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
		_, err = f.service.Login(context.Background(), usecase.LoginInput{
			Identifier: "ada@example.edu",
			Password:   "brand-new-pass",
		})
		assert.NoError(t, err)
	})

	t.Run("a token can only be redeemed once", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")
		rawToken, err := f.service.ForgotPassword(context.Background(), "ada@example.edu")
		require.NoError(t, err)

		input := usecase.ResetPasswordInput{Token: rawToken, NewPassword: "brand-new-pass"}
		require.NoError(t, f.service.ResetPassword(context.Background(), input))

		err = f.service.ResetPassword(context.Background(), input)
		assert.ErrorIs(t, err, domainerrors.ErrResetTokenInvalid)
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)

		err := f.service.ResetPassword(context.Background(), usecase.ResetPasswordInput{
			Token:       "never-issued",
			NewPassword: "brand-new-pass",
		})

		assert.ErrorIs(t, err, domainerrors.ErrResetTokenInvalid)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		t.Parallel()
		f := createTestAuthService(t)
		f.seedUser(t, "6401234567", "ada@example.edu", "s3cret-pass")
		rawToken, err := f.service.ForgotPassword(context.Background(), "ada@example.edu")
		require.NoError(t, err)

		record, err := f.resetRepo.FindByTokenHash(context.Background(), hashResetToken(rawToken))
		require.NoError(t, err)
		record.ExpiresAt = time.Now().Add(-time.Minute)

		err = f.service.ResetPassword(context.Background(), usecase.ResetPasswordInput{
			Token:       rawToken,
			NewPassword: "brand-new-pass",
		})
		assert.ErrorIs(t, err, domainerrors.ErrResetTokenInvalid)
	})
}
