package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweet_shop/internal/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompute_Empty(t *testing.T) {
	t.Parallel()

	snap := Compute(nil, time.Now())
	assert.Zero(t, snap.TotalSweets)
	assert.True(t, snap.TotalValue.IsZero())
	assert.True(t, snap.AveragePrice.IsZero())
	assert.NotNil(t, snap.ByCategory)
	assert.NotNil(t, snap.TopValuable)
}

func TestCompute(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-30 * 24 * time.Hour)
	sweets := []models.Sweet{
		{ID: 1, Name: "Truffle", Category: models.CategoryChocolate, Price: d("25"), Quantity: 100, CreatedAt: old},
		{ID: 2, Name: "Gulab Jamun", Category: models.CategoryIndian, Price: d("15"), Quantity: 50, CreatedAt: old},
		{ID: 3, Name: "Cheesecake", Category: models.CategoryCake, Price: d("350"), Quantity: 10, CreatedAt: now.Add(-time.Hour)},
		{ID: 4, Name: "Gummies", Category: models.CategoryCandy, Price: d("10"), Quantity: 200, CreatedAt: old},
		{ID: 5, Name: "Rasgulla", Category: models.CategoryIndian, Price: d("12"), Quantity: 0, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: 6, Name: "Bar", Category: models.CategoryChocolate, Price: d("40"), Quantity: 50, CreatedAt: old},
		{ID: 7, Name: "Tiramisu", Category: models.CategoryDessert, Price: d("280"), Quantity: 8, CreatedAt: old},
	}

	snap := Compute(sweets, now)

	assert.Equal(t, 7, snap.TotalSweets)
	assert.Equal(t, "12990", snap.TotalValue.String())
	assert.Equal(t, "104.57", snap.AveragePrice.StringFixed(2))
	assert.Equal(t, 418, snap.TotalQuantity)
	assert.Equal(t, StockBuckets{OutOfStock: 1, LowStock: 2, InStock: 4}, snap.StockStatus)
	assert.Equal(t, 2, snap.RecentAdditions)

	require.Len(t, snap.ByCategory, 5)
	assert.Equal(t, models.CategoryChocolate, snap.ByCategory[0].Category)
	assert.Equal(t, 2, snap.ByCategory[0].Count)
	assert.Equal(t, 150, snap.ByCategory[0].TotalQuantity)
	assert.Equal(t, "4500", snap.ByCategory[0].TotalValue.String())
	assert.Equal(t, models.CategoryCake, snap.ByCategory[1].Category)

	require.Len(t, snap.TopValuable, 5)
	ids := []uint{}
	for _, s := range snap.TopValuable {
		ids = append(ids, s.ID)
	}
	// 3500 (3), 2500 (1), 2240 (7), 2000 (4,6 tie -> id order)
	assert.Equal(t, []uint{3, 1, 7, 4, 6}, ids)
}

func TestCompute_DoesNotReorderInput(t *testing.T) {
	t.Parallel()

	sweets := []models.Sweet{
		{ID: 1, Category: models.CategoryOther, Price: d("1"), Quantity: 1},
		{ID: 2, Category: models.CategoryOther, Price: d("9"), Quantity: 9},
	}
	Compute(sweets, time.Now())
	assert.Equal(t, uint(1), sweets[0].ID)
}
