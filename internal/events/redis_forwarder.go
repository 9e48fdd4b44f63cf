package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisForwarder re-publishes events as JSON on a Redis pub/sub channel so
// other processes can react to them.
type RedisForwarder struct {
	client  Publisher
	channel string
}

// Publisher is the slice of the go-redis client the forwarder needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

func NewRedisForwarder(client Publisher, channel string) *RedisForwarder {
	return &RedisForwarder{client: client, channel: channel}
}

// Handle satisfies EventHandler.
func (f *RedisForwarder) Handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	if err := f.client.Publish(ctx, f.channel, body).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	return nil
}
