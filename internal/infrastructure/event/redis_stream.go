package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Stream entry field names. FieldEvent carries the whole change event as JSON,
// {"event":"CREATE","data":{...}}, the same body the NATS publisher sends.
const (
	FieldEventID = "event_id"
	FieldEvent   = "event"
)

// RedisStreamPublisher appends each change event to a Redis stream named after the topic.
// A stream is a single ordered partition, so events of one kind keep their order.
type RedisStreamPublisher struct {
	client *redis.Client
	maxLen int64
}

// NewRedisStreamPublisher creates a publisher on an existing client.
// maxLen caps every stream approximately (XADD MAXLEN ~), 0 leaves streams unbounded.
// The client stays owned by the caller.
func NewRedisStreamPublisher(client *redis.Client, maxLen int64) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, maxLen: maxLen}
}

// Publish appends ev to the stream topic
func (p *RedisStreamPublisher) Publish(ctx context.Context, topic string, ev shared.ChangeEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", topic, err)
	}

	args := &redis.XAddArgs{
		Stream: topic,
		Values: map[string]any{
			FieldEventID: uuid.NewString(),
			FieldEvent:   string(body),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("appending to stream %s: %w", topic, err)
	}
	return nil
}

// Close is a no-op, the client is shared with the live relay and closed by its owner.
func (p *RedisStreamPublisher) Close() error {
	return nil
}
