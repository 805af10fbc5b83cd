package models

import "time"

type MovementKind string

const (
	MovementPurchase MovementKind = "purchase"
	MovementRestock  MovementKind = "restock"
	MovementClear    MovementKind = "clear"
	MovementAdjust   MovementKind = "adjust"
)

// StockMovement records one quantity change of a sweet. Rows outlive the
// sweet they describe.
type StockMovement struct {
	ID             uint         `gorm:"primaryKey"             json:"id"`
	SweetID        uint         `gorm:"index;not null"         json:"sweet_id"`
	Kind           MovementKind `gorm:"size:20;not null;index" json:"kind"`
	Delta          int          `gorm:"not null"               json:"delta"`
	QuantityBefore int          `gorm:"not null"               json:"quantity_before"`
	QuantityAfter  int          `gorm:"not null"               json:"quantity_after"`
	ActorID        *uint        `gorm:"index"                  json:"actor_id,omitempty"`
	Reason         string       `gorm:"size:200"               json:"reason,omitempty"`
	CreatedAt      time.Time    `gorm:"index"                  json:"created_at"`
}

func All() []any {
	return []any{&Sweet{}, &User{}, &RefreshToken{}, &StockMovement{}}
}
