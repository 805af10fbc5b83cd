package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/query"
)

func (r *GormRepo) ListMovements(ctx context.Context, sweetID uint, p query.Page) ([]models.StockMovement, int64, error) {
	base := r.DB.WithContext(ctx).Model(&models.StockMovement{}).Where("sweet_id = ?", sweetID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.StockMovement
	err := r.DB.WithContext(ctx).
		Where("sweet_id = ?", sweetID).
		Order("created_at DESC").Order("id DESC").
		Offset(p.Offset()).Limit(p.Size).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormRepo) CountMovementsSince(ctx context.Context, kind models.MovementKind, since time.Time) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.StockMovement{}).
		Where("kind = ? AND created_at >= ?", string(kind), since).
		Count(&n).Error
	return n, err
}
