package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSPublisher publishes change events to a JetStream stream.
// Each topic is a subject of the stream; the message id header carries a fresh
// event id so the server drops accidental duplicates.
type NATSPublisher struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

// NewNATSPublisher connects to url and creates (or updates) stream with topics as its subjects.
func NewNATSPublisher(ctx context.Context, url, stream string, topics []string, opts ...nats.Option) (*NATSPublisher, error) {
	defaults := []nats.Option{
		nats.Name("fieldops-backend"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("creating jetstream context: %w", err)
	}

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     stream,
		Subjects: topics,
	}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("creating stream %s: %w", stream, err)
	}

	return &NATSPublisher{conn: nc, js: js}, nil
}

// Publish sends ev on subject topic and waits for the stream acknowledgement
func (p *NATSPublisher) Publish(ctx context.Context, topic string, ev shared.ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", topic, err)
	}
	if _, err := p.js.Publish(ctx, topic, data, jetstream.WithMsgID(uuid.NewString())); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// Close drains pending acknowledgements and closes the connection
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
