package postgres

import (
	"context"
	"time"

	"trackivity/internal/domain/entity"
	domainerrors "trackivity/internal/domain/errors"
	"trackivity/internal/domain/repository"
	"trackivity/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// passwordResetRepository implements the domain.PasswordResetRepository interface using GORM.
type passwordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository is the constructor for passwordResetRepository.
func NewPasswordResetRepository(db *gorm.DB) repository.PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

// Create persists a new reset token record.
func (repo *passwordResetRepository) Create(ctx context.Context, token *entity.PasswordResetToken) error {
	tokenM := fromPasswordResetDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create password reset token")
	}

	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindByTokenHash retrieves a reset token record by its stored hash.
func (repo *passwordResetRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordResetToken, error) {
	var tokenM model.PasswordResetTokenModel
	err := repo.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&tokenM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrResetTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find password reset token")
	}

	return toPasswordResetDomain(&tokenM), nil
}

// MarkUsed stamps used_at so the token cannot redeem twice.
func (repo *passwordResetRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.PasswordResetTokenModel{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", time.Now())

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to mark reset token used")
	}
	if result.RowsAffected == 0 {
		return repository.ErrResetTokenNotFound
	}

	return nil
}

// InvalidateByUserID voids all outstanding reset tokens for a user.
func (repo *passwordResetRepository) InvalidateByUserID(ctx context.Context, userID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Model(&model.PasswordResetTokenModel{}).
		Where("user_id = ? AND used_at IS NULL", userID).
		Update("used_at", time.Now()).Error

	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to invalidate reset tokens")
	}

	return nil
}

// DeleteExpired removes tokens past their expiry.
func (repo *passwordResetRepository) DeleteExpired(ctx context.Context) error {
	err := repo.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.PasswordResetTokenModel{}).Error

	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete expired reset tokens")
	}

	return nil
}

// --- Mapper Functions ---

// toPasswordResetDomain converts a GORM model to a domain entity.
func toPasswordResetDomain(data *model.PasswordResetTokenModel) *entity.PasswordResetToken {
	if data == nil {
		return nil
	}

	return &entity.PasswordResetToken{
		ID:        data.ID,
		UserID:    data.UserID,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		UsedAt:    data.UsedAt,
		CreatedAt: data.CreatedAt,
	}
}

// fromPasswordResetDomain converts a domain entity to a GORM model.
func fromPasswordResetDomain(data *entity.PasswordResetToken) *model.PasswordResetTokenModel {
	if data == nil {
		return nil
	}

	return &model.PasswordResetTokenModel{
		ID:        data.ID,
		UserID:    data.UserID,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		UsedAt:    data.UsedAt,
	}
}
