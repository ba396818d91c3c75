package event

import (
	"context"

	"github.com/fieldops/backend/internal/domain/shared"
)

// NoopPublisher is a Publisher that does nothing (used when no broker is configured).
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, ev shared.ChangeEvent) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
