package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweet_shop/internal/logging"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestEvent_TopicAndKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TopicInventory, Event{Type: LowStock, SweetID: 4}.Topic())
	assert.Equal(t, "sweet-4", Event{SweetID: 4}.Key())
	assert.Equal(t, "user:9", Event{Type: AccountDeactivated, UserID: 9}.Topic())
	assert.Equal(t, "user-9", Event{UserID: 9}.Key())
}

func TestDispatcher_DeliversToAllNotifiers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rec := &recorder{}
	failing := NotifierFunc(func(context.Context, Event) error { return errors.New("broker down") })

	d := NewDispatcher(logging.NewWithWriter(&buf, "info"), 8, failing, rec)
	d.Emit(Event{Type: OutOfStock, SweetID: 1}, Event{Type: Restocked, SweetID: 2})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	got := rec.snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, OutOfStock, got[0].Type)
	assert.False(t, got[0].OccurredAt.IsZero())
	assert.Contains(t, buf.String(), "notify_failed")
}

func TestDispatcher_DropsWhenFullOrClosed(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	release := make(chan struct{})
	blocking := NotifierFunc(func(ctx context.Context, e Event) error {
		<-release
		return nil
	})

	d := NewDispatcher(logging.NewWithWriter(&buf, "info"), 1, blocking)
	for i := 0; i < 5; i++ {
		d.Emit(Event{Type: LowStock, SweetID: uint(i + 1)})
	}
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
	assert.Contains(t, buf.String(), "queue full")

	d.Emit(Event{Type: LowStock, SweetID: 99})
	assert.Contains(t, buf.String(), "dispatcher closed")
}

func TestHub_RoutesByTopic(t *testing.T) {
	t.Parallel()

	h := NewHub(4)
	inv := h.Subscribe(TopicInventory)
	mine := h.Subscribe(UserTopic(7))
	other := h.Subscribe(UserTopic(8))
	defer inv.Close()
	defer mine.Close()
	defer other.Close()

	require.NoError(t, h.Notify(context.Background(), Event{Type: LowStock, SweetID: 1}))
	require.NoError(t, h.Notify(context.Background(), Event{Type: AccountDeactivated, UserID: 7}))

	assert.Equal(t, LowStock, (<-inv.C).Type)
	assert.Equal(t, AccountDeactivated, (<-mine.C).Type)
	assert.Empty(t, other.C)
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()

	h := NewHub(1)
	s := h.Subscribe(TopicInventory)
	for i := 0; i < 10; i++ {
		require.NoError(t, h.Notify(context.Background(), Event{Type: LowStock, SweetID: 1}))
	}
	assert.Len(t, s.C, 1)

	s.Close()
	s.Close()
	assert.Zero(t, h.Subscribers(TopicInventory))
	_, open := <-s.C
	assert.False(t, open)
}

type fakePublisher struct {
	topic, key string
	event      any
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.topic, f.key, f.event = topic, key, event
	return nil
}

func TestKafkaNotifier(t *testing.T) {
	t.Parallel()

	p := &fakePublisher{}
	k := &KafkaNotifier{Publisher: p, Topic: "sweet_events"}
	e := Event{Type: NewHighValue, SweetID: 3}

	require.NoError(t, k.Notify(context.Background(), e))
	assert.Equal(t, "sweet_events", p.topic)
	assert.Equal(t, "sweet-3", p.key)
	assert.Equal(t, e, p.event)
}
