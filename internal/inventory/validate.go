package inventory

import (
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/models"
)

const (
	MinNameLength       = 2
	MaxNameLength       = 200
	MaxQuantity         = 10000
	MaxCalories         = 10000
	MaxPurchaseQuantity = 100
	MaxRestockQuantity  = 1000
	MaxReasonLength     = 200
)

var (
	MaxPrice          = decimal.RequireFromString("99999999.99")
	MaxInventoryValue = decimal.NewFromInt(100000)
)

// Validate checks the invariants every stored sweet must hold. The sweet is
// expected to be normalized already.
func Validate(s *models.Sweet) error {
	ve := &domain.ValidationError{}

	switch n := utf8.RuneCountInString(s.Name); {
	case n < MinNameLength:
		ve.Add("name", fmt.Sprintf("name must be at least %d characters long", MinNameLength))
	case n > MaxNameLength:
		ve.Add("name", fmt.Sprintf("name must be at most %d characters long", MaxNameLength))
	}
	if !s.Category.Valid() {
		ve.Add("category", fmt.Sprintf("%q is not a valid category", s.Category))
	}
	if !s.Price.IsPositive() {
		ve.Add("price", ErrInvalidPrice.Error())
		ve.Cause = ErrInvalidPrice
	}
	if s.Quantity < 0 {
		ve.Add("quantity", "quantity cannot be negative")
	}
	if s.Calories != nil && (*s.Calories < 1 || *s.Calories > MaxCalories) {
		ve.Add("calories", fmt.Sprintf("calories must be between 1 and %d", MaxCalories))
	}
	return ve.OrNil()
}

// Limits selects the request-level caps to apply. The inventory value cap
// is only checked when a request sets both price and quantity.
type Limits struct {
	Price    bool
	Quantity bool
}

var AllLimits = Limits{Price: true, Quantity: true}

// ValidateLimits applies the request-level caps used when a sweet is created
// or edited directly. Purchases and restocks are not subject to them.
func ValidateLimits(s *models.Sweet, l Limits) error {
	ve := &domain.ValidationError{}
	if l.Price && s.Price.GreaterThan(MaxPrice) {
		ve.Add("price", "price is too high")
	}
	if l.Quantity && s.Quantity > MaxQuantity {
		ve.Add("quantity", fmt.Sprintf("quantity cannot exceed %d", MaxQuantity))
	}
	if l.Price && l.Quantity && s.TotalValue().GreaterThan(MaxInventoryValue) {
		ve.Add("quantity", fmt.Sprintf("total inventory value cannot exceed %s", MaxInventoryValue.String()))
	}
	return ve.OrNil()
}

func ValidatePurchaseQuantity(quantity int) error {
	if quantity <= 0 {
		return &domain.ValidationError{
			Fields: map[string]string{"quantity": ErrInvalidQuantity.Error()},
			Cause:  ErrInvalidQuantity,
		}
	}
	if quantity > MaxPurchaseQuantity {
		return domain.NewValidationError("quantity", fmt.Sprintf("cannot purchase more than %d items at once", MaxPurchaseQuantity))
	}
	return nil
}

func ValidateRestock(quantity int, reason string) error {
	ve := &domain.ValidationError{}
	if quantity <= 0 {
		ve.Add("quantity", ErrInvalidQuantity.Error())
		ve.Cause = ErrInvalidQuantity
	} else if quantity > MaxRestockQuantity {
		ve.Add("quantity", fmt.Sprintf("cannot restock more than %d items at once", MaxRestockQuantity))
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		ve.Add("reason", fmt.Sprintf("reason must be at most %d characters long", MaxReasonLength))
	}
	return ve.OrNil()
}

func ValidatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return &domain.ValidationError{
			Fields: map[string]string{"price": ErrInvalidPrice.Error()},
			Cause:  ErrInvalidPrice,
		}
	}
	if price.GreaterThan(MaxPrice) {
		return domain.NewValidationError("price", "price is too high")
	}
	return nil
}
