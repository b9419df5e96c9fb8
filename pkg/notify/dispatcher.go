// Package notify delivers lifecycle and target events to recipient-scoped
// pub/sub topics. Delivery is at-most-once best-effort: one attempt, bounded
// timeout, failures are logged and never surface to the caller.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"go-bidtrack-backend/internal/domain"
	"go-bidtrack-backend/pkg/logger"
)

const publishTimeout = 3 * time.Second

// Publisher is the transport behind the dispatcher. Production uses Redis
// PUBLISH; tests swap in a recorder.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// RedisPublisher publishes to Redis channels.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	return p.client.Publish(ctx, topic, payload).Err()
}

// wireEvent is the flat on-wire shape: the kind tag plus the event's own
// payload fields.
type wireEvent struct {
	Kind    domain.EventKind `json:"kind"`
	Payload any              `json:"payload"`
}

// Dispatcher implements domain.Notifier.
type Dispatcher struct {
	pub Publisher
}

func NewDispatcher(pub Publisher) *Dispatcher {
	return &Dispatcher{pub: pub}
}

// Dispatch publishes the event on its recipient topic without blocking the
// caller. The publish runs on a detached context so a cancelled request does
// not abort an already-committed mutation's notification.
func (d *Dispatcher) Dispatch(event domain.Event) {
	if d == nil || d.pub == nil || event == nil {
		return
	}
	go d.publish(event)
}

func (d *Dispatcher) publish(event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("notification publish panicked", "kind", event.Kind(), "panic", r)
		}
	}()

	topic := event.Recipient().Topic()
	raw, err := json.Marshal(wireEvent{Kind: event.Kind(), Payload: event})
	if err != nil {
		logger.Log.Error("notification marshal failed", "kind", event.Kind(), "topic", topic, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := d.pub.Publish(ctx, topic, raw); err != nil {
		logger.Log.Error("notification publish failed", "kind", event.Kind(), "topic", topic, "error", err)
	}
}
