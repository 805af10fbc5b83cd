package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryChocolate Category = "chocolate"
	CategoryCandy     Category = "candy"
	CategoryCake      Category = "cake"
	CategoryCookie    Category = "cookie"
	CategoryDessert   Category = "dessert"
	CategoryIndian    Category = "indian"
	CategoryBakery    Category = "bakery"
	CategoryOther     Category = "other"
)

// Categories is ordered the way the catalog presents them.
var Categories = []Category{
	CategoryChocolate,
	CategoryCandy,
	CategoryCake,
	CategoryCookie,
	CategoryDessert,
	CategoryIndian,
	CategoryBakery,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryChocolate: "Chocolate",
	CategoryCandy:     "Candy",
	CategoryCake:      "Cake",
	CategoryCookie:    "Cookie",
	CategoryDessert:   "Dessert",
	CategoryIndian:    "Indian Sweet",
	CategoryBakery:    "Bakery Item",
	CategoryOther:     "Other",
}

func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	_, ok := categoryLabels[c]
	return c, ok
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

type StockStatus string

const (
	StockOut StockStatus = "out_of_stock"
	StockLow StockStatus = "low_stock"
	StockIn  StockStatus = "in_stock"
)

const (
	// LowStockThreshold is the highest quantity still counted as low stock.
	LowStockThreshold = 10
)

// FeaturedValueThreshold is the inventory value above which a sweet is featured.
var FeaturedValueThreshold = decimal.NewFromInt(50000)

func StatusFor(quantity int) StockStatus {
	switch {
	case quantity <= 0:
		return StockOut
	case quantity <= LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

type Sweet struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"                                           json:"id"`
	Name        string          `gorm:"size:200;not null;index"                                            json:"name"`
	Description string          `gorm:"type:text"                                                          json:"description"`
	Category    Category        `gorm:"size:50;not null;index"                                             json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;index;check:chk_sweets_price,price > 0" json:"price"`
	Quantity    int             `gorm:"not null;default:0;check:chk_sweets_quantity,quantity >= 0"         json:"quantity"`
	Calories    *int            `json:"calories,omitempty"`
	IsFeatured  bool            `gorm:"not null;default:false"                                             json:"is_featured"`
	CreatedAt   time.Time       `gorm:"index"                                                              json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (s *Sweet) IsAvailable() bool {
	return s.Quantity > 0
}

func (s *Sweet) StockStatus() StockStatus {
	return StatusFor(s.Quantity)
}

func (s *Sweet) TotalValue() decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

func (s *Sweet) QualifiesAsFeatured() bool {
	return s.TotalValue().GreaterThan(FeaturedValueThreshold)
}

// Normalize trims text fields, rounds the price to cents and applies the
// automatic featured flag. The flag is never cleared automatically.
func (s *Sweet) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Description = strings.TrimSpace(s.Description)
	s.Price = s.Price.Round(2)
	if s.QualifiesAsFeatured() {
		s.IsFeatured = true
	}
}

func (s *Sweet) BeforeSave(tx *gorm.DB) error {
	s.Normalize()
	return nil
}
