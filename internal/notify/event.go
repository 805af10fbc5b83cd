package notify

import (
	"context"
	"strconv"
	"time"
)

type Type string

const (
	LowStock     Type = "low_stock"
	OutOfStock   Type = "out_of_stock"
	Restocked    Type = "restocked"
	NewHighValue Type = "new_high_value"
	SweetDeleted Type = "sweet_deleted"

	AccountCreated     Type = "account_created"
	AccountDeactivated Type = "account_deactivated"
	AccountActivated   Type = "account_activated"
)

const TopicInventory = "inventory"

func UserTopic(id uint) string {
	return "user:" + strconv.FormatUint(uint64(id), 10)
}

type Event struct {
	Type       Type           `json:"type"`
	SweetID    uint           `json:"sweet_id,omitempty"`
	UserID     uint           `json:"user_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Topic is the hub topic the event is delivered on.
func (e Event) Topic() string {
	if e.SweetID == 0 && e.UserID != 0 {
		return UserTopic(e.UserID)
	}
	return TopicInventory
}

// Key partitions the event stream per entity.
func (e Event) Key() string {
	if e.SweetID != 0 {
		return "sweet-" + strconv.FormatUint(uint64(e.SweetID), 10)
	}
	return "user-" + strconv.FormatUint(uint64(e.UserID), 10)
}

// Notifier delivers a single event somewhere.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Emitter accepts events without blocking the caller.
type Emitter interface {
	Emit(events ...Event)
}

type NotifierFunc func(ctx context.Context, e Event) error

func (f NotifierFunc) Notify(ctx context.Context, e Event) error { return f(ctx, e) }
