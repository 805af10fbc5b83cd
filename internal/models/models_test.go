package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		qty  int
		want StockStatus
	}{
		{0, StockOut},
		{1, StockLow},
		{10, StockLow},
		{11, StockIn},
		{500, StockIn},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.qty), tt.qty)
	}
}

func TestSweet_Derived(t *testing.T) {
	t.Parallel()

	s := Sweet{Price: decimal.RequireFromString("12.50"), Quantity: 4}
	assert.True(t, s.IsAvailable())
	assert.Equal(t, StockLow, s.StockStatus())
	assert.True(t, decimal.RequireFromString("50").Equal(s.TotalValue()))
	assert.False(t, s.QualifiesAsFeatured())

	s.Quantity = 0
	assert.False(t, s.IsAvailable())
	assert.True(t, s.TotalValue().IsZero())
}

func TestSweet_Normalize(t *testing.T) {
	t.Parallel()

	s := Sweet{Name: "  Kaju Katli ", Description: " rich ", Price: decimal.RequireFromString("600.005"), Quantity: 100}
	s.Normalize()

	assert.Equal(t, "Kaju Katli", s.Name)
	assert.Equal(t, "rich", s.Description)
	assert.Equal(t, "600.01", s.Price.StringFixed(2))
	assert.True(t, s.IsFeatured, "value above 50000 is featured")

	s.Quantity = 1
	s.Normalize()
	assert.True(t, s.IsFeatured, "featured flag is never cleared automatically")
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	c, ok := ParseCategory(" Indian ")
	assert.True(t, ok)
	assert.Equal(t, CategoryIndian, c)
	assert.Equal(t, "Indian Sweet", c.Label())

	_, ok = ParseCategory("vegetable")
	assert.False(t, ok)
	assert.Len(t, Categories, 8)
	for _, c := range Categories {
		assert.True(t, c.Valid())
	}
}

func TestUser_NormalizeCascadesPrivileges(t *testing.T) {
	t.Parallel()

	u := User{Email: " Admin@Example.COM ", Username: " boss ", IsSuperuser: true, IsActive: true}
	u.Normalize()

	assert.Equal(t, "admin@example.com", u.Email)
	assert.Equal(t, "boss", u.Username)
	assert.True(t, u.IsAdmin)
	assert.True(t, u.IsStaff)
	assert.Equal(t, "superadmin", u.Role())

	a := User{IsAdmin: true}
	a.Normalize()
	assert.True(t, a.IsStaff)
	assert.False(t, a.IsSuperuser)
	assert.Equal(t, "admin", a.Role())

	plain := User{FirstName: "Ravi", LastName: "Kumar"}
	assert.Equal(t, "user", plain.Role())
	assert.Equal(t, "Ravi Kumar", plain.FullName())
}
