package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/pkg/tokens"
)

func refreshRow(userID uint, token, jti string, exp time.Time) *models.RefreshToken {
	return &models.RefreshToken{
		JTI:       jti,
		TokenHash: tokens.Sha256Hex(token),
		UserID:    userID,
		ExpiresAt: exp,
	}
}

func (r *GormRepo) AddRefreshToken(ctx context.Context, userID uint, token, jti string, exp time.Time) error {
	return r.DB.WithContext(ctx).Create(refreshRow(userID, token, jti, exp)).Error
}

// FindRefreshToken returns the stored row for jti when its hash matches token.
func (r *GormRepo) FindRefreshToken(ctx context.Context, jti, token string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("jti = ? AND token_hash = ?", jti, tokens.Sha256Hex(token)).
		First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("%w: refresh token not found", domain.ErrInvalidToken)
	}
	return &row, nil
}

// RotateRefreshToken revokes the token identified by oldJTI and stores the
// replacement in the same transaction. Only one caller can win the rotation.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, oldToken string, userID uint, token, jti string, exp time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old models.RefreshToken
		err := tx.Clauses(forUpdate()).
			Where("jti = ? AND token_hash = ?", oldJTI, tokens.Sha256Hex(oldToken)).
			First(&old).Error
		if err != nil {
			return fmt.Errorf("%w: refresh token not found", domain.ErrInvalidToken)
		}
		if old.UserID != userID || !old.Usable(tx.NowFunc()) {
			return fmt.Errorf("%w: refresh token revoked or expired", domain.ErrInvalidToken)
		}

		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked = ?", old.ID, false).
			UpdateColumn("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: refresh token already used", domain.ErrInvalidToken)
		}
		return tx.Create(refreshRow(userID, token, jti, exp)).Error
	})
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, jti string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("jti = ?", jti).
		UpdateColumn("revoked", true).Error
}

func (r *GormRepo) RevokeAllRefreshTokens(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		UpdateColumn("revoked", true)
	return res.RowsAffected, res.Error
}
