package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/inventory"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/policy"
	"github.com/Skotchmaster/sweet_shop/pkg/db"
)

// ActorOf converts a loaded account into the resolver's view of it. A nil
// user is anonymous.
func ActorOf(u *models.User) policy.Actor {
	if u == nil {
		return policy.Anonymous()
	}
	return u.Actor()
}

func denied(action policy.Action, d policy.Decision) error {
	switch d.Reason {
	case policy.ReasonUnauthenticated:
		return fmt.Errorf("%w: %s", domain.ErrUnauthenticated, action)
	case policy.ReasonUnavailable:
		return fmt.Errorf("%w: %w", domain.ErrConflict, inventory.ErrInsufficientStock)
	case policy.ReasonInStock:
		return fmt.Errorf("%w: cannot delete a sweet that still has stock", domain.ErrConflict)
	default:
		return fmt.Errorf("%w: %s: %s", domain.ErrPermissionDenied, action, d.Reason)
	}
}

// Authorize checks an action that has no service method of its own, such as
// subscribing to a live feed.
func Authorize(action policy.Action, actor policy.Actor) error {
	return authorize(action, actor)
}

func authorize(action policy.Action, actor policy.Actor) error {
	if d := policy.Resolve(action, actor); !d.Allowed {
		return denied(action, d)
	}
	return nil
}

func authorizeObject(action policy.Action, actor policy.Actor, target policy.Target) error {
	if d := policy.ResolveObject(action, actor, target); !d.Allowed {
		return denied(action, d)
	}
	return nil
}

// translate maps rule and storage errors onto the domain taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrPermissionDenied),
		errors.Is(err, domain.ErrUnauthenticated):
		return err
	case errors.Is(err, inventory.ErrInsufficientStock):
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	case errors.Is(err, inventory.ErrInvalidQuantity):
		return &domain.ValidationError{Fields: map[string]string{"quantity": err.Error()}, Cause: err}
	case errors.Is(err, inventory.ErrInvalidPrice):
		return &domain.ValidationError{Fields: map[string]string{"price": err.Error()}, Cause: err}
	case db.IsRetryable(err):
		return fmt.Errorf("%w: concurrent modification, try again: %w", domain.ErrConflict, err)
	default:
		return err
	}
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
