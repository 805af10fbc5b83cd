package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultDeliveryTimeout = 5 * time.Second

// Dispatcher delivers events to its notifiers on a background goroutine.
// Emit never blocks: when the queue is full the event is dropped and logged.
type Dispatcher struct {
	log       *slog.Logger
	notifiers []Notifier
	timeout   time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}
}

func NewDispatcher(log *slog.Logger, buffer int, notifiers ...Notifier) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	d := &Dispatcher{
		log:       log.With("component", "notify.dispatcher"),
		notifiers: notifiers,
		timeout:   DefaultDeliveryTimeout,
		queue:     make(chan Event, buffer),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) Emit(events ...Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, e := range events {
		if d.closed {
			d.log.Warn("notify_dropped", "reason", "dispatcher closed", "type", e.Type)
			continue
		}
		if e.OccurredAt.IsZero() {
			e.OccurredAt = time.Now().UTC()
		}
		select {
		case d.queue <- e:
		default:
			d.log.Warn("notify_dropped", "reason", "queue full", "type", e.Type, "sweet_id", e.SweetID, "user_id", e.UserID)
		}
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		for _, n := range d.notifiers {
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			if err := n.Notify(ctx, e); err != nil {
				d.log.Warn("notify_failed", "type", e.Type, "sweet_id", e.SweetID, "user_id", e.UserID, "error", err)
			}
			cancel()
		}
	}
}

// Close stops accepting events and waits until queued ones are delivered or
// ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func LogNotifier(l *slog.Logger) Notifier {
	return NotifierFunc(func(ctx context.Context, e Event) error {
		l.Info("event", "type", e.Type, "sweet_id", e.SweetID, "user_id", e.UserID, "payload", e.Payload)
		return nil
	})
}
