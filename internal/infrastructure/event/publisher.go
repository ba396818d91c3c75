package event

import (
	"context"
	"fmt"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// Publisher appends change events to the durable event log.
// Topic is the per-kind stream or subject, e.g. "job_events".
type Publisher interface {
	Publish(ctx context.Context, topic string, ev shared.ChangeEvent) error
	Close() error
}

// NewPublisher builds the publisher selected by cfg.Driver.
// rdb is only used by the redis driver and may be nil otherwise; topics are
// the subjects bound to the JetStream stream by the nats driver.
func NewPublisher(ctx context.Context, cfg config.EventConfig, rdb *redis.Client, topics []string) (Publisher, error) {
	switch cfg.Driver {
	case config.EventDriverRedis:
		if rdb == nil {
			return nil, fmt.Errorf("event driver redis requires a redis client")
		}
		return NewRedisStreamPublisher(rdb, cfg.StreamMaxLen), nil
	case config.EventDriverNATS:
		return NewNATSPublisher(ctx, cfg.NATSURL, cfg.NATSStream, topics)
	case config.EventDriverNone, "":
		return &NoopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown event driver %q", cfg.Driver)
	}
}
