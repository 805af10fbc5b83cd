package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/policy"
	"github.com/Skotchmaster/sweet_shop/internal/query"
	"github.com/Skotchmaster/sweet_shop/internal/stats"
)

type DashboardAlerts struct {
	LowStock   int `json:"low_stock"`
	OutOfStock int `json:"out_of_stock"`
}

type Dashboard struct {
	Today          string          `json:"today"`
	Alerts         DashboardAlerts `json:"alerts"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	TotalSweets    int             `json:"total_sweets"`
	TotalAvailable int             `json:"total_available"`
	TodayPurchases int64           `json:"today_purchases"`
	TodayRestocks  int64           `json:"today_restocks"`
}

func (c *CatalogService) snapshot(ctx context.Context) (stats.Snapshot, error) {
	sweets, err := c.Repo.AllSweets(ctx)
	if err != nil {
		return stats.Snapshot{}, err
	}
	return stats.Compute(sweets, c.now()), nil
}

func (c *CatalogService) Stats(ctx context.Context, actor policy.Actor) (stats.Snapshot, error) {
	if err := authorize(policy.StatsRead, actor); err != nil {
		return stats.Snapshot{}, err
	}
	return c.snapshot(ctx)
}

func (c *CatalogService) Dashboard(ctx context.Context, actor policy.Actor) (*Dashboard, error) {
	if err := authorize(policy.DashboardRead, actor); err != nil {
		return nil, err
	}
	snap, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := c.now()
	midnight := now.Truncate(24 * time.Hour)
	purchases, err := c.Repo.CountMovementsSince(ctx, models.MovementPurchase, midnight)
	if err != nil {
		return nil, err
	}
	restocks, err := c.Repo.CountMovementsSince(ctx, models.MovementRestock, midnight)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Today: now.Format(time.DateOnly),
		Alerts: DashboardAlerts{
			LowStock:   snap.StockStatus.LowStock,
			OutOfStock: snap.StockStatus.OutOfStock,
		},
		InventoryValue: snap.TotalValue,
		TotalSweets:    snap.TotalSweets,
		TotalAvailable: snap.StockStatus.LowStock + snap.StockStatus.InStock,
		TodayPurchases: purchases,
		TodayRestocks:  restocks,
	}, nil
}

func (c *CatalogService) Movements(ctx context.Context, actor policy.Actor, id uint, p query.Page) (query.Result[models.StockMovement], error) {
	if err := authorize(policy.SweetMovements, actor); err != nil {
		return query.Result[models.StockMovement]{}, err
	}
	if _, err := c.Repo.GetSweet(ctx, id); err != nil {
		return query.Result[models.StockMovement]{}, err
	}
	items, total, err := c.Repo.ListMovements(ctx, id, p)
	if err != nil {
		return query.Result[models.StockMovement]{}, err
	}
	return query.NewResult(items, total, p), nil
}
