// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"trackivity/config"
	deliverycontext "trackivity/internal/delivery/context"
	"trackivity/internal/domain/entity"
	domainerrors "trackivity/internal/domain/errors"
	"trackivity/internal/domain/repository"
	"trackivity/internal/domain/service"
	"trackivity/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager     repository.TransactionManager
	userRepo      repository.UserRepository
	sessionRepo   repository.SessionRepository
	resetRepo     repository.PasswordResetRepository
	hasher        service.PasswordHasher
	tokenService  service.TokenService
	resetTokenTTL time.Duration
	logger        *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	SessionRepo  repository.SessionRepository
	ResetRepo    repository.PasswordResetRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	resetTokenTTL := 30 * time.Minute
	if params.Config != nil && params.Config.Auth != nil && params.Config.Auth.ResetTokenTTL > 0 {
		resetTokenTTL = params.Config.Auth.ResetTokenTTL
	}

	return &authService{
		txManager:     params.TxManager,
		userRepo:      params.UserRepo,
		sessionRepo:   params.SessionRepo,
		resetRepo:     params.ResetRepo,
		hasher:        params.Hasher,
		tokenService:  params.TokenService,
		resetTokenTTL: resetTokenTTL,
		logger:        params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new student account.
func (srv *authService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("studentID", input.StudentID))

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("hash registration password")
	}

	user := &entity.User{
		StudentID:    input.StudentID,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Prefix:       input.Prefix,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Status:       entity.UserStatusActive,
	}

	if err := srv.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, domainerrors.ErrUserAlreadyExists
		}
		srv.log(ctx).Error("Failed to create user", slog.Any("error", err))

		return nil, errors.Wrap(err, "create user")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", user.ID))

	return &usecase.RegisterOutput{User: user}, nil
}

// Login verifies credentials, opens a session, and issues its token. A
// missing user and a wrong password take the same path out so response
// timing and content reveal nothing about which failed.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	user, err := srv.userRepo.FindByLoginIdentifier(ctx, input.Identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		srv.log(ctx).Error("Failed to look up user for login", slog.Any("error", err))

		return nil, errors.Wrap(err, "find user for login")
	}

	if !user.IsActive() {
		srv.log(ctx).Warn("Login attempt on inactive account", slog.Any("userID", user.ID))

		return nil, domainerrors.ErrAccountNotActive
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(srv.tokenService.SessionDuration(input.RememberMe))

	session := &entity.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		IsActive:  true,
		Method:    entity.LoginMethodPassword,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		ExpiresAt: expiresAt,
	}
	if err := srv.sessionRepo.Create(ctx, session); err != nil {
		srv.log(ctx).Error("Failed to create session", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "create session")
	}

	token, err := srv.tokenService.GenerateSessionToken(user, session.ID, expiresAt)
	if err != nil {
		srv.log(ctx).Error("Failed to sign session token", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "generate session token")
	}

	// Login bookkeeping is advisory; a failed counter update must not
	// roll back an otherwise successful login.
	if err := srv.userRepo.RecordLogin(ctx, user.ID, now); err != nil {
		srv.log(ctx).Warn("Failed to record login stats", slog.Any("userID", user.ID), slog.Any("error", err))
	}

	srv.log(ctx).Info("Login succeeded", slog.Any("userID", user.ID), slog.String("sessionID", session.ID))

	return &usecase.LoginOutput{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// Logout deactivates the session. Repeated calls are harmless.
func (srv *authService) Logout(ctx context.Context, sessionID string) error {
	if err := srv.sessionRepo.Deactivate(ctx, sessionID); err != nil {
		srv.log(ctx).Error("Failed to deactivate session", slog.String("sessionID", sessionID), slog.Any("error", err))

		return errors.Wrap(err, "deactivate session")
	}

	return nil
}

// Me returns the user's current profile from storage. Claims carry a
// login-time snapshot, so profile reads always hit the database.
func (srv *authService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "find current user")
	}

	return user, nil
}

// ValidateSession verifies a session token end to end.
func (srv *authService) ValidateSession(ctx context.Context, tokenString string) (*usecase.AuthContext, error) {
	claims, err := srv.tokenService.ValidateSessionToken(tokenString)
	if err != nil {
		if errors.Is(err, service.ErrTokenExpired) {
			return nil, domainerrors.ErrSessionExpired
		}

		return nil, domainerrors.ErrInvalidToken
	}

	session, err := srv.sessionRepo.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, domainerrors.ErrInvalidToken
		}
		srv.log(ctx).Error("Failed to load session", slog.String("sessionID", claims.SessionID), slog.Any("error", err))

		return nil, errors.Wrap(err, "find session")
	}

	// A forged or mixed-up token must not ride on someone else's session.
	if session.UserID != claims.UserID {
		return nil, domainerrors.ErrInvalidToken
	}

	now := time.Now()
	if !session.IsValid(now) {
		if now.After(session.ExpiresAt) {
			return nil, domainerrors.ErrSessionExpired
		}

		return nil, domainerrors.ErrSessionRevoked
	}

	if err := srv.sessionRepo.Touch(ctx, session.ID); err != nil {
		srv.log(ctx).Warn("Failed to touch session", slog.String("sessionID", session.ID), slog.Any("error", err))
	}

	return &usecase.AuthContext{Claims: claims, Session: session}, nil
}

// ForgotPassword opens a reset flow. Unknown emails return an empty token
// with no error so the endpoint cannot be used to probe accounts.
func (srv *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Debug("Password reset requested for unknown email")

			return "", nil
		}

		return "", errors.Wrap(err, "find user for password reset")
	}

	rawToken, err := generateResetToken()
	if err != nil {
		return "", errors.Wrap(err, "generate reset token")
	}

	record := &entity.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashResetToken(rawToken),
		ExpiresAt: time.Now().Add(srv.resetTokenTTL),
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		resetRepo := repoFactory.NewPasswordResetRepository()

		// Only the newest token stays redeemable.
		if err := resetRepo.InvalidateByUserID(ctx, user.ID); err != nil {
			return errors.Wrap(err, "invalidate previous reset tokens")
		}

		return resetRepo.Create(ctx, record)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to store reset token", slog.Any("userID", user.ID), slog.Any("error", err))

		return "", errors.Wrap(err, "store reset token")
	}

	srv.log(ctx).Info("Password reset token issued", slog.Any("userID", user.ID))

	return rawToken, nil
}

// ResetPassword redeems a reset token, replaces the password, and revokes
// every session the user holds.
func (srv *authService) ResetPassword(ctx context.Context, input usecase.ResetPasswordInput) error {
	record, err := srv.resetRepo.FindByTokenHash(ctx, hashResetToken(input.Token))
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return domainerrors.ErrResetTokenInvalid
		}

		return errors.Wrap(err, "find reset token")
	}

	if !record.IsUsable(time.Now()) {
		return domainerrors.ErrResetTokenInvalid
	}

	hashedPassword, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during reset", slog.Any("error", err))

		return domainerrors.ErrPasswordHashFailed.WrapMessage("hash replacement password")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.NewUserRepository().UpdatePassword(ctx, record.UserID, hashedPassword); err != nil {
			return errors.Wrap(err, "update password")
		}

		if err := repoFactory.NewPasswordResetRepository().MarkUsed(ctx, record.ID); err != nil {
			return errors.Wrap(err, "mark reset token used")
		}

		// Every open session dies with the old password.
		return repoFactory.NewSessionRepository().DeactivateAllByUserID(ctx, record.UserID)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute password reset transaction", slog.Any("userID", record.UserID), slog.Any("error", err))

		return errors.Wrap(err, "execute password reset transaction")
	}

	srv.log(ctx).Info("Password reset completed", slog.Any("userID", record.UserID))

	return nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}
