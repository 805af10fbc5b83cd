// Package inventory holds the stock and price rules of a sweet. Functions
// mutate the passed sweet only when they succeed.
package inventory

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/notify"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidPrice      = errors.New("price must be greater than zero")
)

// NewHighValueThreshold is the value above which a newly created sweet is announced.
var NewHighValueThreshold = decimal.NewFromInt(10000)

type Transition struct {
	Before int
	After  int
}

func (t Transition) Delta() int { return t.After - t.Before }

func (t Transition) Changed() bool { return t.Before != t.After }

func Purchase(s *models.Sweet, quantity int) (Transition, error) {
	if quantity <= 0 {
		return Transition{}, ErrInvalidQuantity
	}
	if quantity > s.Quantity {
		return Transition{}, ErrInsufficientStock
	}
	t := Transition{Before: s.Quantity, After: s.Quantity - quantity}
	s.Quantity = t.After
	return t, nil
}

func Restock(s *models.Sweet, quantity int) (Transition, error) {
	if quantity <= 0 {
		return Transition{}, ErrInvalidQuantity
	}
	t := Transition{Before: s.Quantity, After: s.Quantity + quantity}
	s.Quantity = t.After
	if s.QualifiesAsFeatured() {
		s.IsFeatured = true
	}
	return t, nil
}

func Clear(s *models.Sweet) Transition {
	t := Transition{Before: s.Quantity, After: 0}
	s.Quantity = 0
	return t
}

func UpdatePrice(s *models.Sweet, price decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	s.Price = price.Round(2)
	if s.QualifiesAsFeatured() {
		s.IsFeatured = true
	}
	return nil
}

// Events returns the notifications a quantity transition triggers.
func Events(s *models.Sweet, t Transition, now time.Time) []notify.Event {
	var out []notify.Event
	ev := func(typ notify.Type) notify.Event {
		return notify.Event{
			Type:    typ,
			SweetID: s.ID,
			Payload: map[string]any{
				"name":              s.Name,
				"category":          string(s.Category),
				"quantity":          t.After,
				"previous_quantity": t.Before,
				"price":             s.Price.StringFixed(2),
			},
			OccurredAt: now,
		}
	}

	if t.Before > models.LowStockThreshold && t.After <= models.LowStockThreshold {
		out = append(out, ev(notify.LowStock))
	}
	if t.Before > 0 && t.After == 0 {
		out = append(out, ev(notify.OutOfStock))
	}
	if t.Before == 0 && t.After > 0 {
		out = append(out, ev(notify.Restocked))
	}
	return out
}

// CreatedEvents announces high value additions to the catalog.
func CreatedEvents(s *models.Sweet, now time.Time) []notify.Event {
	if !s.TotalValue().GreaterThan(NewHighValueThreshold) {
		return nil
	}
	return []notify.Event{{
		Type:    notify.NewHighValue,
		SweetID: s.ID,
		Payload: map[string]any{
			"name":        s.Name,
			"category":    string(s.Category),
			"quantity":    s.Quantity,
			"price":       s.Price.StringFixed(2),
			"total_value": s.TotalValue().StringFixed(2),
		},
		OccurredAt: now,
	}}
}

func DeletedEvent(s *models.Sweet, now time.Time) notify.Event {
	return notify.Event{
		Type:       notify.SweetDeleted,
		SweetID:    s.ID,
		Payload:    map[string]any{"name": s.Name, "category": string(s.Category)},
		OccurredAt: now,
	}
}
