package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel events are published on.
const DefaultChannel = "careerhub:notifications"

// Event is the JSON message published to Redis.
type Event struct {
	Type    Kind      `json:"type"`
	Payload Payload   `json:"payload"`
	At      time.Time `json:"at"`
}

// RedisNotifier publishes submissions for an external mail worker.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
}

// NewRedisNotifier connects to redisURL and verifies the connection.
func NewRedisNotifier(ctx context.Context, redisURL, channel string) (*RedisNotifier, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return newRedisNotifier(rdb, channel), nil
}

func newRedisNotifier(rdb *redis.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{rdb: rdb, channel: channel}
}

func (r *RedisNotifier) Notify(ctx context.Context, kind Kind, p Payload) error {
	event, err := json.Marshal(Event{Type: kind, Payload: p, At: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := r.rdb.Publish(ctx, r.channel, event).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", r.channel, err)
	}
	return nil
}

func (r *RedisNotifier) Verify(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisNotifier) Close() error {
	return r.rdb.Close()
}
