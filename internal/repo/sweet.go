package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/inventory"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/query"
	"github.com/Skotchmaster/sweet_shop/pkg/db"
)

const duplicateNameMsg = "a sweet with this name already exists in this category"

// StockChange describes who changed stock and why, for the movement ledger.
type StockChange struct {
	Kind    models.MovementKind
	ActorID *uint
	Reason  string
}

func nameTaken(tx *gorm.DB, name string, category models.Category, excludeID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.Sweet{}).
		Where("LOWER(name) = LOWER(?) AND category = ? AND id <> ?", name, string(category), excludeID).
		Count(&count).Error
	return count > 0, err
}

func duplicateName() error {
	return domain.NewValidationError("name", duplicateNameMsg)
}

func (r *GormRepo) CreateSweet(ctx context.Context, s *models.Sweet) error {
	s.Normalize()
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, s.Name, s.Category, 0)
		if err != nil {
			return err
		}
		if taken {
			return duplicateName()
		}
		return tx.Create(s).Error
	})
	if db.IsUniqueViolation(err) {
		return duplicateName()
	}
	return err
}

func (r *GormRepo) GetSweet(ctx context.Context, id uint) (*models.Sweet, error) {
	var s models.Sweet
	if err := r.DB.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, wrapNotFound(err, "sweet", id)
	}
	return &s, nil
}

func (r *GormRepo) ListSweets(ctx context.Context, c query.Criteria, p query.Page) ([]models.Sweet, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Sweet{}).Scopes(c.Filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Sweet
	err := r.DB.WithContext(ctx).Model(&models.Sweet{}).
		Scopes(c.Scope).
		Offset(p.Offset()).
		Limit(p.Size).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindSweets returns every sweet matching c, unpaginated.
func (r *GormRepo) FindSweets(ctx context.Context, c query.Criteria) ([]models.Sweet, error) {
	var items []models.Sweet
	err := r.DB.WithContext(ctx).Model(&models.Sweet{}).Scopes(c.Scope).Find(&items).Error
	return items, err
}

func (r *GormRepo) SweetsByIDs(ctx context.Context, ids []uint) ([]models.Sweet, error) {
	var items []models.Sweet
	if len(ids) == 0 {
		return items, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *GormRepo) AllSweets(ctx context.Context) ([]models.Sweet, error) {
	var items []models.Sweet
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error
	return items, err
}

func (r *GormRepo) CountSweets(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Sweet{}).Count(&n).Error
	return n, err
}

func lockSweet(tx *gorm.DB, id uint) (*models.Sweet, error) {
	var s models.Sweet
	if err := tx.Clauses(forUpdate()).First(&s, id).Error; err != nil {
		return nil, wrapNotFound(err, "sweet", id)
	}
	return &s, nil
}

// writeSweet stores s only if its quantity is still expectQty.
func writeSweet(tx *gorm.DB, s *models.Sweet, expectQty int) error {
	s.Normalize()
	s.UpdatedAt = tx.NowFunc()
	res := tx.Model(&models.Sweet{}).
		Where("id = ? AND quantity = ?", s.ID, expectQty).
		UpdateColumns(map[string]any{
			"name":        s.Name,
			"description": s.Description,
			"category":    string(s.Category),
			"price":       s.Price,
			"quantity":    s.Quantity,
			"calories":    s.Calories,
			"is_featured": s.IsFeatured,
			"updated_at":  s.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("sweet %d: %w", s.ID, db.ErrStaleWrite)
	}
	return nil
}

func recordMovement(tx *gorm.DB, s *models.Sweet, t inventory.Transition, change StockChange) error {
	if !t.Changed() {
		return nil
	}
	m := models.StockMovement{
		SweetID:        s.ID,
		Kind:           change.Kind,
		Delta:          t.Delta(),
		QuantityBefore: t.Before,
		QuantityAfter:  t.After,
		ActorID:        change.ActorID,
		Reason:         change.Reason,
	}
	return tx.Create(&m).Error
}

// UpdateSweet locks the sweet, lets fn edit it and stores the result. A
// quantity edit is recorded as an adjustment.
func (r *GormRepo) UpdateSweet(ctx context.Context, id uint, actorID *uint, fn func(*models.Sweet) error) (*models.Sweet, inventory.Transition, error) {
	var (
		out *models.Sweet
		tr  inventory.Transition
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := lockSweet(tx, id)
		if err != nil {
			return err
		}
		before := s.Quantity
		if err := fn(s); err != nil {
			return err
		}
		s.Normalize()

		taken, err := nameTaken(tx, s.Name, s.Category, s.ID)
		if err != nil {
			return err
		}
		if taken {
			return duplicateName()
		}
		if err := writeSweet(tx, s, before); err != nil {
			return err
		}

		tr = inventory.Transition{Before: before, After: s.Quantity}
		if err := recordMovement(tx, s, tr, StockChange{Kind: models.MovementAdjust, ActorID: actorID}); err != nil {
			return err
		}
		out = s
		return nil
	})
	if db.IsUniqueViolation(err) {
		return nil, inventory.Transition{}, duplicateName()
	}
	if err != nil {
		return nil, inventory.Transition{}, err
	}
	return out, tr, nil
}

// ChangeStock applies fn to the locked sweet and persists the new quantity
// with a compare-and-set on the quantity read inside the transaction.
func (r *GormRepo) ChangeStock(ctx context.Context, id uint, change StockChange, fn func(*models.Sweet) (inventory.Transition, error)) (*models.Sweet, inventory.Transition, error) {
	var (
		out *models.Sweet
		tr  inventory.Transition
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := lockSweet(tx, id)
		if err != nil {
			return err
		}
		t, err := fn(s)
		if err != nil {
			return err
		}
		if t.Changed() {
			if err := writeSweet(tx, s, t.Before); err != nil {
				return err
			}
			if err := recordMovement(tx, s, t, change); err != nil {
				return err
			}
		}
		out, tr = s, t
		return nil
	})
	if err != nil {
		return nil, inventory.Transition{}, err
	}
	return out, tr, nil
}

// DeleteSweet removes the sweet when guard accepts it and its stock is still empty.
func (r *GormRepo) DeleteSweet(ctx context.Context, id uint, guard func(*models.Sweet) error) (*models.Sweet, error) {
	var out *models.Sweet
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := lockSweet(tx, id)
		if err != nil {
			return err
		}
		if err := guard(s); err != nil {
			return err
		}
		res := tx.Where("id = ? AND quantity = 0", id).Delete(&models.Sweet{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("sweet %d: %w", id, db.ErrStaleWrite)
		}
		out = s
		return nil
	})
	return out, err
}
