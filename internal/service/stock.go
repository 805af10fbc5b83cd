package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/inventory"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/policy"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
	"github.com/Skotchmaster/sweet_shop/pkg/db"
)

const (
	BulkRestock    = "restock"
	BulkClearStock = "clear_stock"
	BulkDelete     = "delete"
)

type PurchaseResult struct {
	Sweet          *models.Sweet
	Quantity       int
	TotalPrice     decimal.Decimal
	RemainingStock int
	PurchasedAt    time.Time
}

type RestockResult struct {
	Sweet       *models.Sweet
	Quantity    int
	Previous    int
	Reason      string
	RestockedAt time.Time
}

type BulkResult struct {
	Operation string `json:"operation"`
	Affected  []uint `json:"affected"`
	Skipped   []uint `json:"skipped"`
}

var errSkip = errors.New("skipped")

// changeStock runs one stock transition with retries on lost races. Once it
// has committed the search document is refreshed and the events go out.
func (c *CatalogService) changeStock(ctx context.Context, id uint, change repo.StockChange, fn func(*models.Sweet) (inventory.Transition, error)) (*models.Sweet, inventory.Transition, error) {
	var (
		s *models.Sweet
		t inventory.Transition
	)
	err := db.WithRetry(ctx, c.retry(), func() error {
		var err error
		s, t, err = c.Repo.ChangeStock(ctx, id, change, fn)
		return err
	})
	if err != nil {
		return nil, inventory.Transition{}, translate(err)
	}
	c.reindex(ctx, s)
	c.emit(inventory.Events(s, t, c.now())...)
	return s, t, nil
}

func (c *CatalogService) Purchase(ctx context.Context, actor policy.Actor, id uint, quantity int) (*PurchaseResult, error) {
	if err := authorize(policy.SweetPurchase, actor); err != nil {
		return nil, err
	}
	if err := inventory.ValidatePurchaseQuantity(quantity); err != nil {
		return nil, err
	}

	change := repo.StockChange{Kind: models.MovementPurchase, ActorID: actorID(actor)}
	s, _, err := c.changeStock(ctx, id, change, func(s *models.Sweet) (inventory.Transition, error) {
		if err := authorizeObject(policy.SweetPurchase, actor, policy.SweetTarget{Quantity: s.Quantity}); err != nil {
			return inventory.Transition{}, err
		}
		return inventory.Purchase(s, quantity)
	})
	if err != nil {
		return nil, err
	}

	return &PurchaseResult{
		Sweet:          s,
		Quantity:       quantity,
		TotalPrice:     s.Price.Mul(decimal.NewFromInt(int64(quantity))),
		RemainingStock: s.Quantity,
		PurchasedAt:    c.now(),
	}, nil
}

func (c *CatalogService) Restock(ctx context.Context, actor policy.Actor, id uint, quantity int, reason string) (*RestockResult, error) {
	if err := authorize(policy.SweetRestock, actor); err != nil {
		return nil, err
	}
	if err := inventory.ValidateRestock(quantity, reason); err != nil {
		return nil, err
	}

	change := repo.StockChange{Kind: models.MovementRestock, ActorID: actorID(actor), Reason: reason}
	s, t, err := c.changeStock(ctx, id, change, func(s *models.Sweet) (inventory.Transition, error) {
		return inventory.Restock(s, quantity)
	})
	if err != nil {
		return nil, err
	}

	return &RestockResult{
		Sweet:       s,
		Quantity:    quantity,
		Previous:    t.Before,
		Reason:      reason,
		RestockedAt: c.now(),
	}, nil
}

// Bulk applies one operation to each listed sweet independently. Missing
// sweets, and stocked sweets for delete, are reported as skipped.
func (c *CatalogService) Bulk(ctx context.Context, actor policy.Actor, req transport.BulkRequest) (*BulkResult, error) {
	if err := authorize(policy.SweetBulk, actor); err != nil {
		return nil, err
	}

	var apply func(uint) error
	switch req.Operation {
	case BulkRestock:
		if err := inventory.ValidateRestock(req.Quantity, ""); err != nil {
			return nil, translate(err)
		}
		change := repo.StockChange{Kind: models.MovementRestock, ActorID: actorID(actor), Reason: "bulk restock"}
		apply = func(id uint) error {
			_, _, err := c.changeStock(ctx, id, change, func(s *models.Sweet) (inventory.Transition, error) {
				return inventory.Restock(s, req.Quantity)
			})
			return err
		}
	case BulkClearStock:
		change := repo.StockChange{Kind: models.MovementClear, ActorID: actorID(actor), Reason: "bulk clear"}
		apply = func(id uint) error {
			_, _, err := c.changeStock(ctx, id, change, func(s *models.Sweet) (inventory.Transition, error) {
				return inventory.Clear(s), nil
			})
			return err
		}
	case BulkDelete:
		apply = func(id uint) error {
			s, err := c.Repo.DeleteSweet(ctx, id, func(s *models.Sweet) error {
				if s.Quantity != 0 {
					return errSkip
				}
				return nil
			})
			if err != nil {
				return err
			}
			c.unindex(ctx, id)
			c.emit(inventory.DeletedEvent(s, c.now()))
			return nil
		}
	default:
		return nil, domain.NewValidationError("operation", fmt.Sprintf("%q is not a valid operation", req.Operation))
	}

	res := &BulkResult{Operation: req.Operation, Affected: []uint{}, Skipped: []uint{}}
	for _, id := range lo.Uniq(req.SweetIDs) {
		err := apply(id)
		switch {
		case err == nil:
			res.Affected = append(res.Affected, id)
		case errors.Is(err, errSkip), errors.Is(err, domain.ErrNotFound), errors.Is(err, db.ErrStaleWrite):
			res.Skipped = append(res.Skipped, id)
		default:
			return nil, translate(err)
		}
	}
	return res, nil
}
