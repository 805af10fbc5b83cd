package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sweet_shop/internal/models"
)

type SweetRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Calories    *int            `json:"calories"`
	IsFeatured  bool            `json:"is_featured"`
}

// Patch turns a full replacement into a patch that sets every field.
func (r SweetRequest) Patch() SweetPatchRequest {
	return SweetPatchRequest{
		Name:        &r.Name,
		Description: &r.Description,
		Category:    &r.Category,
		Price:       &r.Price,
		Quantity:    &r.Quantity,
		Calories:    r.Calories,
		IsFeatured:  &r.IsFeatured,
	}
}

type SweetPatchRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
	Calories    *int             `json:"calories"`
	IsFeatured  *bool            `json:"is_featured"`
}

type PurchaseRequest struct {
	Quantity int `json:"quantity"`
}

type RestockRequest struct {
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

type PriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

type BulkRequest struct {
	Operation string `json:"operation" validate:"required,oneof=restock clear_stock delete"`
	SweetIDs  []uint `json:"sweet_ids" validate:"required,min=1,max=100,dive,gt=0"`
	Quantity  int    `json:"quantity"  validate:"gte=0"`
}

type SweetResponse struct {
	ID              uint               `json:"id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Category        models.Category    `json:"category"`
	CategoryDisplay string             `json:"category_display"`
	Price           string             `json:"price"`
	Quantity        int                `json:"quantity"`
	Calories        *int               `json:"calories,omitempty"`
	IsFeatured      bool               `json:"is_featured"`
	IsAvailable     bool               `json:"is_available"`
	StockStatus     models.StockStatus `json:"stock_status"`
	TotalValue      string             `json:"total_value"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func NewSweetResponse(s models.Sweet) SweetResponse {
	return SweetResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		Category:        s.Category,
		CategoryDisplay: s.Category.Label(),
		Price:           s.Price.StringFixed(2),
		Quantity:        s.Quantity,
		Calories:        s.Calories,
		IsFeatured:      s.IsFeatured,
		IsAvailable:     s.IsAvailable(),
		StockStatus:     s.StockStatus(),
		TotalValue:      s.TotalValue().StringFixed(2),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func NewSweetResponses(items []models.Sweet) []SweetResponse {
	out := make([]SweetResponse, 0, len(items))
	for _, s := range items {
		out = append(out, NewSweetResponse(s))
	}
	return out
}

type PurchaseResponse struct {
	Message        string        `json:"message"`
	Sweet          SweetResponse `json:"sweet"`
	Quantity       int           `json:"quantity"`
	TotalPrice     string        `json:"total_price"`
	RemainingStock int           `json:"remaining_stock"`
	PurchasedAt    time.Time     `json:"purchased_at"`
}

type RestockResponse struct {
	Message       string        `json:"message"`
	Sweet         SweetResponse `json:"sweet"`
	Quantity      int           `json:"quantity"`
	PreviousStock int           `json:"previous_stock"`
	NewStock      int           `json:"new_stock"`
	Reason        string        `json:"reason,omitempty"`
	RestockedAt   time.Time     `json:"restocked_at"`
}

type CategoryResponse struct {
	Value models.Category `json:"value"`
	Label string          `json:"label"`
}

func NewCategoryResponses() []CategoryResponse {
	out := make([]CategoryResponse, 0, len(models.Categories))
	for _, c := range models.Categories {
		out = append(out, CategoryResponse{Value: c, Label: c.Label()})
	}
	return out
}
