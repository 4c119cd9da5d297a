package resultbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus fans results out over redis pub/sub so a callback received by
// any instance reaches the one holding the session.
type RedisBus struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

var _ Bus = (*RedisBus)(nil)

// NewRedisBus creates a bus on the default channel
func NewRedisBus(client *redis.Client, logger *zap.Logger) *RedisBus {
	return &RedisBus{client: client, channel: Channel, logger: logger}
}

// Publish encodes r as JSON and publishes it
func (b *RedisBus) Publish(ctx context.Context, r Result) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode payment result: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish payment result: %w", err)
	}
	return nil
}

// Subscribe starts a goroutine that decodes messages and passes them to h
func (b *RedisBus) Subscribe(ctx context.Context, h Handler) (func(), error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	// Wait for the subscription confirmation so early publishes are not lost
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	ch := pubsub.Channel()
	go func() {
		for msg := range ch {
			var r Result
			if err := json.Unmarshal([]byte(msg.Payload), &r); err != nil {
				b.logger.Warn("Discarding malformed payment result", zap.Error(err))
				continue
			}
			h(r)
		}
	}()

	return func() { _ = pubsub.Close() }, nil
}
