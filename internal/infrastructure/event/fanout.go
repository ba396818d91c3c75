package event

import (
	"context"

	"github.com/fieldops/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/fieldops/backend/internal/infrastructure/event"

// Broadcaster pushes a named event to live viewers
type Broadcaster interface {
	Broadcast(ctx context.Context, name string, payload any) error
}

// Fanout delivers successful mutations to the event log and, for kinds that
// broadcast, to live viewers. Delivery runs on the dispatcher; Notify returns immediately.
type Fanout struct {
	publisher   Publisher
	broadcaster Broadcaster
	dispatcher  *Dispatcher
	tracer      trace.Tracer
}

// NewFanout creates a Fanout. broadcaster may be nil to disable live delivery.
func NewFanout(publisher Publisher, broadcaster Broadcaster, dispatcher *Dispatcher) *Fanout {
	return &Fanout{
		publisher:   publisher,
		broadcaster: broadcaster,
		dispatcher:  dispatcher,
		tracer:      otel.Tracer(tracerName),
	}
}

// Notify implements shared.Notifier
func (f *Fanout) Notify(ctx context.Context, kind shared.Kind, op shared.Operation, payload any) {
	ev := shared.NewChangeEvent(op, payload)

	f.dispatcher.Submit(ctx, "publish "+kind.Topic, func(ctx context.Context) error {
		return f.traced(ctx, "fanout.publish", kind, op, func(ctx context.Context) error {
			return f.publisher.Publish(ctx, kind.Topic, ev)
		})
	})

	if !kind.BroadcastEnabled || f.broadcaster == nil {
		return
	}
	name := kind.EventName(op)
	f.dispatcher.Submit(ctx, "broadcast "+name, func(ctx context.Context) error {
		return f.traced(ctx, "fanout.broadcast", kind, op, func(ctx context.Context) error {
			return f.broadcaster.Broadcast(ctx, name, ev.Data)
		})
	})
}

func (f *Fanout) traced(ctx context.Context, spanName string, kind shared.Kind, op shared.Operation, fn func(context.Context) error) error {
	ctx, span := f.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("fieldops.kind", kind.Name),
			attribute.String("fieldops.operation", string(op)),
			attribute.String("messaging.destination.name", kind.Topic),
		),
	)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

var _ shared.Notifier = (*Fanout)(nil)
