package query_test

import (
	"testing"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/query"
	"github.com/Skotchmaster/sweet_shop/internal/testutil"
)

func catalog() []*models.Sweet {
	return []*models.Sweet{
		{Name: "Dark Chocolate Bar", Description: "70% cocoa", Category: models.CategoryChocolate, Price: decimal.RequireFromString("40"), Quantity: 30},
		{Name: "Milk Chocolate", Description: "creamy", Category: models.CategoryChocolate, Price: decimal.RequireFromString("25"), Quantity: 0},
		{Name: "Gulab Jamun", Description: "in sugar syrup", Category: models.CategoryIndian, Price: decimal.RequireFromString("15"), Quantity: 5},
		{Name: "Tiramisu", Description: "coffee dessert", Category: models.CategoryDessert, Price: decimal.RequireFromString("280"), Quantity: 8, IsFeatured: true},
		{Name: "Gummy Bears", Description: "fruit candy", Category: models.CategoryCandy, Price: decimal.RequireFromString("10"), Quantity: 200},
	}
}

func seed(t *testing.T) *gorm.DB {
	t.Helper()
	gdb := testutil.NewDB(t)
	for _, s := range catalog() {
		require.NoError(t, gdb.Create(s).Error)
	}
	return gdb
}

func names(sweets []models.Sweet) []string {
	return lo.Map(sweets, func(s models.Sweet, _ int) string { return s.Name })
}

func run(t *testing.T, gdb *gorm.DB, c query.Criteria) []models.Sweet {
	t.Helper()
	var out []models.Sweet
	require.NoError(t, gdb.Model(&models.Sweet{}).Scopes(c.Scope).Find(&out).Error)
	return out
}

func TestCriteria_ScopeAndMatchAgree(t *testing.T) {
	t.Parallel()
	gdb := seed(t)

	cases := map[string]query.Criteria{
		"none":          {},
		"name":          {Name: mo.Some("CHOC")},
		"text":          {Text: mo.Some("syrup")},
		"text category": {Text: mo.Some("candy")},
		"category":      {Category: mo.Some(models.CategoryChocolate)},
		"price range":   {MinPrice: mo.Some(decimal.NewFromInt(15)), MaxPrice: mo.Some(decimal.NewFromInt(40))},
		"available":     {AvailableOnly: true, Category: mo.Some(models.CategoryChocolate)},
		"featured":      {Featured: mo.Some(true)},
		"low stock":     {MaxQuantity: mo.Some(models.LowStockThreshold)},
		"like escape":   {Name: mo.Some("%")},
	}

	all := catalog()
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			got := names(run(t, gdb, c))
			want := lo.FilterMap(all, func(s *models.Sweet, _ int) (string, bool) { return s.Name, c.Match(s) })
			assert.ElementsMatch(t, want, got)
		})
	}
}

func TestCriteria_Filters(t *testing.T) {
	t.Parallel()
	gdb := seed(t)

	assert.ElementsMatch(t, []string{"Dark Chocolate Bar", "Milk Chocolate"}, names(run(t, gdb, query.Criteria{Name: mo.Some("chocolate")})))
	assert.ElementsMatch(t, []string{"Dark Chocolate Bar"}, names(run(t, gdb, query.Criteria{Name: mo.Some("chocolate"), AvailableOnly: true})))
	assert.ElementsMatch(t, []string{"Gulab Jamun", "Tiramisu", "Milk Chocolate"}, names(run(t, gdb, query.Criteria{MaxQuantity: mo.Some(10)})))
	assert.Empty(t, run(t, gdb, query.Criteria{Name: mo.Some("%")}))
}

func TestCriteria_Sorting(t *testing.T) {
	t.Parallel()
	gdb := seed(t)

	assert.Equal(t,
		[]string{"Gummy Bears", "Gulab Jamun", "Milk Chocolate", "Dark Chocolate Bar", "Tiramisu"},
		names(run(t, gdb, query.Criteria{SortBy: "price"})))
	assert.Equal(t,
		[]string{"Tiramisu", "Milk Chocolate", "Gummy Bears", "Gulab Jamun", "Dark Chocolate Bar"},
		names(run(t, gdb, query.Criteria{SortBy: "-name"})))
	assert.Equal(t,
		[]string{"Gummy Bears", "Tiramisu", "Gulab Jamun", "Milk Chocolate", "Dark Chocolate Bar"},
		names(run(t, gdb, query.Criteria{})), "default is newest first")
}

func TestCriteria_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, query.Criteria{SortBy: "-quantity"}.Validate())

	err := query.Criteria{SortBy: "calories"}.Validate()
	assert.ErrorIs(t, err, query.ErrInvalidSortKey)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, domain.FieldErrors(err), "sort_by")

	err = query.Criteria{MinPrice: mo.Some(decimal.NewFromInt(50)), MaxPrice: mo.Some(decimal.NewFromInt(10))}.Validate()
	assert.Contains(t, domain.FieldErrors(err), "min_price")

	err = query.Criteria{Category: mo.Some(models.Category("veg"))}.Validate()
	assert.Contains(t, domain.FieldErrors(err), "category")
}

func TestPageAndResult(t *testing.T) {
	t.Parallel()

	p := query.NewPage(3, 500)
	assert.Equal(t, 100, p.Size)
	assert.Equal(t, 200, p.Offset())

	r := query.NewResult[int](nil, 45, query.NewPage(2, 20))
	assert.NotNil(t, r.Items)
	assert.Equal(t, 3, r.TotalPages)
	assert.Equal(t, 2, r.CurrentPage)

	mapped := query.MapResult(query.NewResult([]int{1, 2}, 2, query.NewPage(1, 0)), func(i int) string { return string(rune('a' + i)) })
	assert.Equal(t, []string{"b", "c"}, mapped.Items)
	assert.Equal(t, 20, mapped.PageSize)
}
