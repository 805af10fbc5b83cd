package service

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/inventory"
	"github.com/Skotchmaster/sweet_shop/internal/logging"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/notify"
	"github.com/Skotchmaster/sweet_shop/internal/policy"
	"github.com/Skotchmaster/sweet_shop/internal/query"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
	"github.com/Skotchmaster/sweet_shop/pkg/db"
)

const indexTimeout = 2 * time.Second

// SearchIndex is an optional full-text index kept next to the database.
type SearchIndex interface {
	Index(ctx context.Context, s *models.Sweet) error
	Remove(ctx context.Context, id uint) error
	Search(ctx context.Context, q string, from, size int) (int64, []uint, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Events notify.Emitter
	Index  SearchIndex
	Retry  db.RetryOptions
	Now    func() time.Time
}

func (c *CatalogService) now() time.Time { return clock(c.Now).now() }

func (c *CatalogService) retry() db.RetryOptions {
	if c.Retry == (db.RetryOptions{}) {
		return db.DefaultRetryOptions()
	}
	return c.Retry
}

func (c *CatalogService) emit(events ...notify.Event) {
	if c.Events == nil || len(events) == 0 {
		return
	}
	c.Events.Emit(events...)
}

func (c *CatalogService) reindex(ctx context.Context, s *models.Sweet) {
	if c.Index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
	defer cancel()
	if err := c.Index.Index(ctx, s); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "sweet_id", s.ID, "error", err)
	}
}

func (c *CatalogService) unindex(ctx context.Context, id uint) {
	if c.Index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
	defer cancel()
	if err := c.Index.Remove(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("search_unindex_failed", "sweet_id", id, "error", err)
	}
}

func actorID(actor policy.Actor) *uint {
	if actor.ID == 0 {
		return nil
	}
	id := actor.ID
	return &id
}

func validateSweet(s *models.Sweet, l inventory.Limits) error {
	ve := &domain.ValidationError{}
	for _, err := range []error{inventory.Validate(s), inventory.ValidateLimits(s, l)} {
		for field, msg := range domain.FieldErrors(err) {
			ve.Add(field, msg)
		}
	}
	return ve.OrNil()
}

func limitsOf(p transport.SweetPatchRequest) inventory.Limits {
	return inventory.Limits{Price: p.Price != nil, Quantity: p.Quantity != nil}
}

func parseCategory(raw string) models.Category {
	cat, _ := models.ParseCategory(raw)
	return cat
}

func applyPatch(s *models.Sweet, p transport.SweetPatchRequest) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Category != nil {
		s.Category = parseCategory(*p.Category)
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.Quantity != nil {
		s.Quantity = *p.Quantity
	}
	if p.Calories != nil {
		s.Calories = p.Calories
	}
	if p.IsFeatured != nil {
		s.IsFeatured = *p.IsFeatured
	}
	s.Normalize()
}

func (c *CatalogService) Create(ctx context.Context, actor policy.Actor, req transport.SweetRequest) (*models.Sweet, error) {
	if err := authorize(policy.SweetCreate, actor); err != nil {
		return nil, err
	}

	s := &models.Sweet{}
	applyPatch(s, req.Patch())
	if err := validateSweet(s, inventory.AllLimits); err != nil {
		return nil, err
	}
	if err := c.Repo.CreateSweet(ctx, s); err != nil {
		return nil, translate(err)
	}

	c.reindex(ctx, s)
	c.emit(inventory.CreatedEvents(s, c.now())...)
	return s, nil
}

func (c *CatalogService) Get(ctx context.Context, actor policy.Actor, id uint) (*models.Sweet, error) {
	if err := authorize(policy.SweetRetrieve, actor); err != nil {
		return nil, err
	}
	return c.Repo.GetSweet(ctx, id)
}

func (c *CatalogService) list(ctx context.Context, action policy.Action, actor policy.Actor, crit query.Criteria, p query.Page) (query.Result[models.Sweet], error) {
	if err := authorize(action, actor); err != nil {
		return query.Result[models.Sweet]{}, err
	}
	if err := crit.Validate(); err != nil {
		return query.Result[models.Sweet]{}, err
	}
	items, total, err := c.Repo.ListSweets(ctx, crit, p)
	if err != nil {
		return query.Result[models.Sweet]{}, err
	}
	return query.NewResult(items, total, p), nil
}

func (c *CatalogService) List(ctx context.Context, actor policy.Actor, crit query.Criteria, p query.Page) (query.Result[models.Sweet], error) {
	return c.list(ctx, policy.SweetList, actor, crit, p)
}

func (c *CatalogService) Search(ctx context.Context, actor policy.Actor, crit query.Criteria, p query.Page) (query.Result[models.Sweet], error) {
	return c.list(ctx, policy.SweetSearch, actor, crit, p)
}

func (c *CatalogService) Featured(ctx context.Context, actor policy.Actor, p query.Page) (query.Result[models.Sweet], error) {
	crit := query.Criteria{Featured: mo.Some(true), AvailableOnly: true}
	return c.list(ctx, policy.SweetFeatured, actor, crit, p)
}

// TextSearch prefers the full-text index and falls back to the database
// substring filter when the index is missing or failing.
func (c *CatalogService) TextSearch(ctx context.Context, actor policy.Actor, q string, p query.Page) (query.Result[models.Sweet], error) {
	if err := authorize(policy.SweetSearch, actor); err != nil {
		return query.Result[models.Sweet]{}, err
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return query.NewResult([]models.Sweet{}, 0, p), nil
	}

	if c.Index != nil {
		total, ids, err := c.Index.Search(ctx, q, p.Offset(), p.Size)
		if err == nil {
			found, err := c.Repo.SweetsByIDs(ctx, ids)
			if err != nil {
				return query.Result[models.Sweet]{}, err
			}
			byID := lo.KeyBy(found, func(s models.Sweet) uint { return s.ID })
			items := lo.FilterMap(ids, func(id uint, _ int) (models.Sweet, bool) {
				s, ok := byID[id]
				return s, ok
			})
			return query.NewResult(items, total, p), nil
		}
		logging.FromContext(ctx).Warn("text_search_fallback", "reason", "search index unavailable", "error", err)
	}

	return c.list(ctx, policy.SweetSearch, actor, query.Criteria{Text: mo.Some(q)}, p)
}

func (c *CatalogService) LowStock(ctx context.Context, actor policy.Actor) ([]models.Sweet, error) {
	if err := authorize(policy.SweetLowStock, actor); err != nil {
		return nil, err
	}
	return c.Repo.FindSweets(ctx, query.Criteria{MaxQuantity: mo.Some(models.LowStockThreshold), SortBy: "quantity"})
}

func (c *CatalogService) OutOfStock(ctx context.Context, actor policy.Actor) ([]models.Sweet, error) {
	if err := authorize(policy.SweetOutOfStock, actor); err != nil {
		return nil, err
	}
	return c.Repo.FindSweets(ctx, query.Criteria{MaxQuantity: mo.Some(0), SortBy: "name"})
}

func (c *CatalogService) Categories(_ context.Context, actor policy.Actor) ([]models.Category, error) {
	if err := authorize(policy.SweetCategories, actor); err != nil {
		return nil, err
	}
	return models.Categories, nil
}

func (c *CatalogService) Update(ctx context.Context, actor policy.Actor, id uint, patch transport.SweetPatchRequest) (*models.Sweet, error) {
	if err := authorize(policy.SweetUpdate, actor); err != nil {
		return nil, err
	}

	s, t, err := c.Repo.UpdateSweet(ctx, id, actorID(actor), func(s *models.Sweet) error {
		applyPatch(s, patch)
		return validateSweet(s, limitsOf(patch))
	})
	if err != nil {
		return nil, translate(err)
	}

	c.reindex(ctx, s)
	c.emit(inventory.Events(s, t, c.now())...)
	return s, nil
}

func (c *CatalogService) UpdatePrice(ctx context.Context, actor policy.Actor, id uint, price decimal.Decimal) (*models.Sweet, error) {
	if err := authorize(policy.SweetUpdatePrice, actor); err != nil {
		return nil, err
	}
	if err := inventory.ValidatePrice(price); err != nil {
		return nil, err
	}

	s, _, err := c.Repo.UpdateSweet(ctx, id, actorID(actor), func(s *models.Sweet) error {
		return inventory.UpdatePrice(s, price)
	})
	if err != nil {
		return nil, translate(err)
	}
	c.reindex(ctx, s)
	return s, nil
}

func (c *CatalogService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	if err := authorize(policy.SweetDelete, actor); err != nil {
		return err
	}

	s, err := c.Repo.DeleteSweet(ctx, id, func(s *models.Sweet) error {
		return authorizeObject(policy.SweetDelete, actor, policy.SweetTarget{Quantity: s.Quantity})
	})
	if err != nil {
		return translate(err)
	}

	c.unindex(ctx, id)
	c.emit(inventory.DeletedEvent(s, c.now()))
	return nil
}
