// Package stats derives summary figures from a catalog snapshot.
package stats

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sweet_shop/internal/models"
)

const (
	TopValuableLimit = 5
	RecentWindow     = 7 * 24 * time.Hour
)

type StockBuckets struct {
	OutOfStock int `json:"out_of_stock"`
	LowStock   int `json:"low_stock"`
	InStock    int `json:"in_stock"`
}

type CategoryRollup struct {
	Category      models.Category `json:"category"`
	Label         string          `json:"label"`
	Count         int             `json:"count"`
	TotalQuantity int             `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

type ValuableSweet struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Category   models.Category `json:"category"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type Snapshot struct {
	TotalSweets     int              `json:"total_sweets"`
	TotalValue      decimal.Decimal  `json:"total_value"`
	AveragePrice    decimal.Decimal  `json:"average_price"`
	TotalQuantity   int              `json:"total_quantity"`
	StockStatus     StockBuckets     `json:"stock_status"`
	ByCategory      []CategoryRollup `json:"by_category"`
	TopValuable     []ValuableSweet  `json:"top_valuable"`
	RecentAdditions int              `json:"recent_additions_7_days"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

func sumValue(sweets []models.Sweet) decimal.Decimal {
	return lo.Reduce(sweets, func(acc decimal.Decimal, s models.Sweet, _ int) decimal.Decimal {
		return acc.Add(s.TotalValue())
	}, decimal.Zero)
}

// Compute builds a snapshot over the whole catalog as of now.
func Compute(sweets []models.Sweet, now time.Time) Snapshot {
	snap := Snapshot{
		TotalSweets:   len(sweets),
		TotalValue:    sumValue(sweets).Round(2),
		AveragePrice:  decimal.Zero,
		TotalQuantity: lo.SumBy(sweets, func(s models.Sweet) int { return s.Quantity }),
		ByCategory:    []CategoryRollup{},
		TopValuable:   []ValuableSweet{},
		GeneratedAt:   now,
	}
	if len(sweets) == 0 {
		return snap
	}

	prices := lo.Reduce(sweets, func(acc decimal.Decimal, s models.Sweet, _ int) decimal.Decimal {
		return acc.Add(s.Price)
	}, decimal.Zero)
	snap.AveragePrice = prices.Div(decimal.NewFromInt(int64(len(sweets)))).Round(2)

	buckets := lo.CountValuesBy(sweets, func(s models.Sweet) models.StockStatus { return s.StockStatus() })
	snap.StockStatus = StockBuckets{
		OutOfStock: buckets[models.StockOut],
		LowStock:   buckets[models.StockLow],
		InStock:    buckets[models.StockIn],
	}

	groups := lo.GroupBy(sweets, func(s models.Sweet) models.Category { return s.Category })
	for _, cat := range models.Categories {
		group, ok := groups[cat]
		if !ok {
			continue
		}
		snap.ByCategory = append(snap.ByCategory, CategoryRollup{
			Category:      cat,
			Label:         cat.Label(),
			Count:         len(group),
			TotalQuantity: lo.SumBy(group, func(s models.Sweet) int { return s.Quantity }),
			TotalValue:    sumValue(group).Round(2),
		})
	}
	sort.SliceStable(snap.ByCategory, func(i, j int) bool {
		return snap.ByCategory[i].TotalValue.GreaterThan(snap.ByCategory[j].TotalValue)
	})

	ranked := make([]models.Sweet, len(sweets))
	copy(ranked, sweets)
	sort.Slice(ranked, func(i, j int) bool {
		vi, vj := ranked[i].TotalValue(), ranked[j].TotalValue()
		if !vi.Equal(vj) {
			return vi.GreaterThan(vj)
		}
		return ranked[i].ID < ranked[j].ID
	})
	for _, s := range lo.Slice(ranked, 0, TopValuableLimit) {
		snap.TopValuable = append(snap.TopValuable, ValuableSweet{
			ID:         s.ID,
			Name:       s.Name,
			Category:   s.Category,
			Price:      s.Price,
			Quantity:   s.Quantity,
			TotalValue: s.TotalValue().Round(2),
		})
	}

	since := now.Add(-RecentWindow)
	snap.RecentAdditions = lo.CountBy(sweets, func(s models.Sweet) bool { return s.CreatedAt.After(since) })

	return snap
}
