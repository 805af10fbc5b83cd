package inventory

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/notify"
)

func sweet(qty int, price string) *models.Sweet {
	return &models.Sweet{ID: 7, Name: "Ladoo", Category: models.CategoryIndian, Price: decimal.RequireFromString(price), Quantity: qty}
}

func TestPurchase_Scenario(t *testing.T) {
	t.Parallel()

	s := sweet(50, "100")
	tr, err := Purchase(s, 5)
	require.NoError(t, err)

	assert.Equal(t, 45, s.Quantity)
	assert.Equal(t, Transition{Before: 50, After: 45}, tr)
	assert.Equal(t, "500.00", s.Price.Mul(decimal.NewFromInt(5)).StringFixed(2))
}

func TestPurchase_Errors(t *testing.T) {
	t.Parallel()

	s := sweet(3, "10")
	for _, q := range []int{0, -1} {
		_, err := Purchase(s, q)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	_, err := Purchase(s, 4)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 3, s.Quantity, "failed purchase leaves stock unchanged")
}

func TestRestock(t *testing.T) {
	t.Parallel()

	s := sweet(0, "10")
	tr, err := Restock(s, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, s.Quantity)

	events := Events(s, tr, time.Now())
	require.Len(t, events, 1)
	assert.Equal(t, notify.Restocked, events[0].Type)
	assert.Equal(t, uint(7), events[0].SweetID)

	for _, q := range []int{0, -5} {
		_, err := Restock(s, q)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Equal(t, 20, s.Quantity)
	}
}

func TestRestock_AutoFeatures(t *testing.T) {
	t.Parallel()

	s := sweet(10, "1000")
	_, err := Restock(s, 41)
	require.NoError(t, err)
	assert.True(t, s.IsFeatured)
}

func TestQuantityProperties(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		s := sweet(rng.Intn(30), "5")
		for step := 0; step < 50; step++ {
			q := rng.Intn(41) - 10
			before := s.Quantity
			if rng.Intn(2) == 0 {
				_, err := Purchase(s, q)
				if q > before || q <= 0 {
					require.Error(t, err)
					require.Equal(t, before, s.Quantity)
				} else {
					require.NoError(t, err)
					require.Equal(t, before-q, s.Quantity)
				}
			} else {
				_, err := Restock(s, q)
				if q <= 0 {
					require.ErrorIs(t, err, ErrInvalidQuantity)
					require.Equal(t, before, s.Quantity)
				} else {
					require.NoError(t, err)
					require.Equal(t, before+q, s.Quantity)
				}
			}
			require.GreaterOrEqual(t, s.Quantity, 0)
		}
	}
}

func TestRestockThenPurchaseRoundTrip(t *testing.T) {
	t.Parallel()

	for _, start := range []int{0, 1, 10, 99} {
		for _, q := range []int{1, 7, 250} {
			s := sweet(start, "3")
			_, err := Restock(s, q)
			require.NoError(t, err)
			_, err = Purchase(s, q)
			require.NoError(t, err)
			assert.Equal(t, start, s.Quantity)
		}
	}
}

func TestEvents_Transitions(t *testing.T) {
	t.Parallel()

	types := func(tr Transition) []notify.Type {
		var out []notify.Type
		for _, e := range Events(sweet(tr.After, "1"), tr, time.Now()) {
			out = append(out, e.Type)
		}
		return out
	}

	assert.Equal(t, []notify.Type{notify.LowStock}, types(Transition{Before: 11, After: 10}))
	assert.Equal(t, []notify.Type{notify.LowStock, notify.OutOfStock}, types(Transition{Before: 50, After: 0}))
	assert.Equal(t, []notify.Type{notify.OutOfStock}, types(Transition{Before: 4, After: 0}))
	assert.Equal(t, []notify.Type{notify.Restocked}, types(Transition{Before: 0, After: 5}))
	assert.Empty(t, types(Transition{Before: 10, After: 9}))
	assert.Empty(t, types(Transition{Before: 30, After: 20}))
	assert.Empty(t, types(Transition{Before: 0, After: 0}))
}

func TestCreatedEvents(t *testing.T) {
	t.Parallel()

	assert.Empty(t, CreatedEvents(sweet(100, "100"), time.Now()))

	events := CreatedEvents(sweet(101, "100"), time.Now())
	require.Len(t, events, 1)
	assert.Equal(t, notify.NewHighValue, events[0].Type)
	assert.Equal(t, "10100.00", events[0].Payload["total_value"])
}

func TestUpdatePrice(t *testing.T) {
	t.Parallel()

	s := sweet(5, "10")
	assert.ErrorIs(t, UpdatePrice(s, decimal.Zero), ErrInvalidPrice)
	assert.ErrorIs(t, UpdatePrice(s, decimal.NewFromInt(-3)), ErrInvalidPrice)
	assert.Equal(t, "10.00", s.Price.StringFixed(2))

	require.NoError(t, UpdatePrice(s, decimal.RequireFromString("12.345")))
	assert.Equal(t, "12.35", s.Price.StringFixed(2))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cal := 0
	s := &models.Sweet{Name: "a", Category: "veg", Price: decimal.Zero, Quantity: -1, Calories: &cal}
	err := Validate(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	fields := domain.FieldErrors(err)
	for _, f := range []string{"name", "category", "price", "quantity", "calories"} {
		assert.Contains(t, fields, f)
	}

	assert.NoError(t, Validate(sweet(0, "0.01")))
}

func TestValidateLimits(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateLimits(sweet(1000, "100"), AllLimits))

	err := ValidateLimits(sweet(1001, "100"), AllLimits)
	require.Error(t, err)
	assert.Contains(t, domain.FieldErrors(err), "quantity")

	assert.Error(t, ValidateLimits(sweet(10001, "0.01"), AllLimits))
}

func TestValidateLimits_OnlyRequestedFields(t *testing.T) {
	t.Parallel()

	over := sweet(1400, "100")
	assert.NoError(t, ValidateLimits(over, Limits{}))
	assert.NoError(t, ValidateLimits(over, Limits{Price: true}))
	assert.NoError(t, ValidateLimits(over, Limits{Quantity: true}))
	assert.Error(t, ValidateLimits(over, AllLimits))

	assert.Error(t, ValidateLimits(sweet(10001, "0.01"), Limits{Quantity: true}))
	assert.NoError(t, ValidateLimits(sweet(10001, "0.01"), Limits{Price: true}))
}

func TestRequestQuantityChecks(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ValidatePurchaseQuantity(0), ErrInvalidQuantity)
	assert.ErrorIs(t, ValidatePurchaseQuantity(0), domain.ErrValidation)
	assert.Error(t, ValidatePurchaseQuantity(101))
	assert.NoError(t, ValidatePurchaseQuantity(100))

	assert.ErrorIs(t, ValidateRestock(-1, ""), ErrInvalidQuantity)
	assert.Error(t, ValidateRestock(1001, ""))
	assert.NoError(t, ValidateRestock(1000, "weekly delivery"))

	assert.ErrorIs(t, ValidatePrice(decimal.Zero), ErrInvalidPrice)
	assert.NoError(t, ValidatePrice(decimal.NewFromInt(1)))
}
