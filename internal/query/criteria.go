// Package query turns catalog filters into database scopes and in-memory
// predicates that agree with each other.
package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/models"
)

var ErrInvalidSortKey = errors.New("invalid sort key")

const DefaultSort = "-created_at"

var sortOrders = map[string]string{
	"name":        "name ASC",
	"-name":       "name DESC",
	"price":       "price ASC",
	"-price":      "price DESC",
	"quantity":    "quantity ASC",
	"-quantity":   "quantity DESC",
	"created_at":  "created_at ASC",
	"-created_at": "created_at DESC",
}

func SortKeys() []string {
	keys := lo.Keys(sortOrders)
	sort.Strings(keys)
	return keys
}

// Criteria is a conjunction of optional filters over the catalog.
type Criteria struct {
	Name          mo.Option[string]
	Text          mo.Option[string]
	Category      mo.Option[models.Category]
	MinPrice      mo.Option[decimal.Decimal]
	MaxPrice      mo.Option[decimal.Decimal]
	Featured      mo.Option[bool]
	MaxQuantity   mo.Option[int]
	AvailableOnly bool
	SortBy        string
}

func (c Criteria) Validate() error {
	ve := &domain.ValidationError{}

	if c.SortBy != "" {
		if _, ok := sortOrders[c.SortBy]; !ok {
			ve.Add("sort_by", fmt.Sprintf("%q is not one of %s", c.SortBy, strings.Join(SortKeys(), ", ")))
			ve.Cause = ErrInvalidSortKey
		}
	}
	if cat, ok := c.Category.Get(); ok && !cat.Valid() {
		ve.Add("category", fmt.Sprintf("%q is not a valid category", cat))
	}
	minP, hasMin := c.MinPrice.Get()
	maxP, hasMax := c.MaxPrice.Get()
	if hasMin && minP.IsNegative() {
		ve.Add("min_price", "min_price cannot be negative")
	}
	if hasMax && maxP.IsNegative() {
		ve.Add("max_price", "max_price cannot be negative")
	}
	if hasMin && hasMax && minP.GreaterThan(maxP) {
		ve.Add("min_price", "min_price cannot be greater than max_price")
	}
	return ve.OrNil()
}

func (c Criteria) order() string {
	if o, ok := sortOrders[c.SortBy]; ok {
		return o
	}
	return sortOrders[DefaultSort]
}

func likePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

// Filter applies the predicates without ordering, for counting.
func (c Criteria) Filter(db *gorm.DB) *gorm.DB {
	if name, ok := c.Name.Get(); ok && strings.TrimSpace(name) != "" {
		db = db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(name))
	}
	if text, ok := c.Text.Get(); ok && strings.TrimSpace(text) != "" {
		p := likePattern(text)
		db = db.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\')`, p, p, p)
	}
	if cat, ok := c.Category.Get(); ok {
		db = db.Where("category = ?", string(cat))
	}
	if p, ok := c.MinPrice.Get(); ok {
		db = db.Where("price >= ?", p)
	}
	if p, ok := c.MaxPrice.Get(); ok {
		db = db.Where("price <= ?", p)
	}
	if f, ok := c.Featured.Get(); ok {
		db = db.Where("is_featured = ?", f)
	}
	if q, ok := c.MaxQuantity.Get(); ok {
		db = db.Where("quantity <= ?", q)
	}
	if c.AvailableOnly {
		db = db.Where("quantity > 0")
	}
	return db
}

// Scope applies the predicates and the ordering, with id as a tie breaker.
func (c Criteria) Scope(db *gorm.DB) *gorm.DB {
	order := c.order()
	tie := "id ASC"
	if strings.HasSuffix(order, "DESC") {
		tie = "id DESC"
	}
	return c.Filter(db).Order(order).Order(tie)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

// Match reports whether s satisfies every filter.
func (c Criteria) Match(s *models.Sweet) bool {
	if name, ok := c.Name.Get(); ok && !containsFold(s.Name, name) {
		return false
	}
	if text, ok := c.Text.Get(); ok {
		if !containsFold(s.Name, text) && !containsFold(s.Description, text) && !containsFold(string(s.Category), text) {
			return false
		}
	}
	if cat, ok := c.Category.Get(); ok && s.Category != cat {
		return false
	}
	if p, ok := c.MinPrice.Get(); ok && s.Price.LessThan(p) {
		return false
	}
	if p, ok := c.MaxPrice.Get(); ok && s.Price.GreaterThan(p) {
		return false
	}
	if f, ok := c.Featured.Get(); ok && s.IsFeatured != f {
		return false
	}
	if q, ok := c.MaxQuantity.Get(); ok && s.Quantity > q {
		return false
	}
	if c.AvailableOnly && !s.IsAvailable() {
		return false
	}
	return true
}
