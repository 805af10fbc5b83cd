package notify

import "context"

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// KafkaNotifier forwards every event to one topic, keyed per entity.
type KafkaNotifier struct {
	Publisher Publisher
	Topic     string
}

func (k *KafkaNotifier) Notify(ctx context.Context, e Event) error {
	return k.Publisher.PublishEvent(ctx, k.Topic, e.Key(), e)
}
