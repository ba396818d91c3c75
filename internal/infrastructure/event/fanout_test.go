package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fieldops/backend/internal/domain/fieldops"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

type publishedEvent struct {
	topic string
	ev    shared.ChangeEvent
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, ev shared.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, ev: ev})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type broadcastFrame struct {
	name    string
	payload any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	frames []broadcastFrame
}

func (b *recordingBroadcaster) Broadcast(ctx context.Context, name string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = append(b.frames, broadcastFrame{name: name, payload: payload})
	return nil
}

func newTestFanout(t *testing.T, pub Publisher, b Broadcaster) (*Fanout, *Dispatcher) {
	t.Helper()
	d := NewDispatcher(2, 16, zap.NewNop())
	d.Start()
	return NewFanout(pub, b, d), d
}

func TestFanout_CreatePublishesAndBroadcasts(t *testing.T) {
	pub := &recordingPublisher{}
	b := &recordingBroadcaster{}
	f, d := newTestFanout(t, pub, b)

	job := fieldops.Job{Title: "Mulch"}
	job.ID = 5
	f.Notify(context.Background(), fieldops.KindJob, shared.OperationCreate, job)
	stopDispatcher(t, d)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "job_events", pub.events[0].topic)
	assert.Equal(t, shared.OperationCreate, pub.events[0].ev.Event)
	assert.Equal(t, job, pub.events[0].ev.Data)

	require.Len(t, b.frames, 1)
	assert.Equal(t, "job_created", b.frames[0].name)
	assert.Equal(t, job, b.frames[0].payload)
}

func TestFanout_SaturatedDispatcherStillPublishes(t *testing.T) {
	pub := &recordingPublisher{}
	b := &recordingBroadcaster{}
	d := NewDispatcher(1, 1, zap.NewNop())
	d.Start()
	f := NewFanout(pub, b, d)

	release := make(chan struct{})
	busy := make(chan struct{})
	d.Submit(context.Background(), "slow", func(ctx context.Context) error {
		close(busy)
		<-release
		return nil
	})
	<-busy
	// the only worker is busy, this fills the queue
	d.Submit(context.Background(), "queued", func(ctx context.Context) error { return nil })

	team := fieldops.Team{Name: "Harvest"}
	team.ID = 3
	f.Notify(context.Background(), fieldops.KindTeam, shared.OperationUpdate, team)

	assert.Eventually(t, func() bool {
		pub.mu.Lock()
		defer pub.mu.Unlock()
		return len(pub.events) == 1
	}, time.Second, 5*time.Millisecond, "publish waited for the busy worker")
	assert.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.frames) == 1
	}, time.Second, 5*time.Millisecond, "broadcast waited for the busy worker")

	close(release)
	stopDispatcher(t, d)

	assert.Equal(t, "team_events", pub.events[0].topic)
	assert.Equal(t, shared.OperationUpdate, pub.events[0].ev.Event)
	assert.Equal(t, "team_updated", b.frames[0].name)
	assert.Equal(t, int64(2), d.Overflowed())
	assert.Zero(t, d.Dropped())
}

func TestFanout_DeleteCarriesIDOnly(t *testing.T) {
	pub := &recordingPublisher{}
	b := &recordingBroadcaster{}
	f, d := newTestFanout(t, pub, b)

	f.Notify(context.Background(), fieldops.KindTeamAssignment, shared.OperationDelete, shared.DeletedRef{ID: 9})
	stopDispatcher(t, d)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "team_assignment_events", pub.events[0].topic)
	assert.Equal(t, shared.DeletedRef{ID: 9}, pub.events[0].ev.Data)
	require.Len(t, b.frames, 1)
	assert.Equal(t, "team_assignment_deleted", b.frames[0].name)
}

func TestFanout_BroadcastDisabledKind(t *testing.T) {
	pub := &recordingPublisher{}
	b := &recordingBroadcaster{}
	f, d := newTestFanout(t, pub, b)

	f.Notify(context.Background(), fieldops.KindClient.WithBroadcast(false), shared.OperationUpdate, map[string]any{"id": 1})
	stopDispatcher(t, d)

	assert.Len(t, pub.events, 1)
	assert.Empty(t, b.frames)
}

func TestFanout_PublishFailureDoesNotStopBroadcast(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker unavailable")}
	b := &recordingBroadcaster{}
	f, d := newTestFanout(t, pub, b)

	f.Notify(context.Background(), fieldops.KindTeam, shared.OperationCreate, map[string]any{"id": 1})
	stopDispatcher(t, d)

	assert.Len(t, b.frames, 1)
	assert.Equal(t, int64(1), d.Failed())
}

func TestFanout_NilBroadcaster(t *testing.T) {
	pub := &recordingPublisher{}
	f, d := newTestFanout(t, pub, nil)

	f.Notify(context.Background(), fieldops.KindTeam, shared.OperationCreate, map[string]any{"id": 1})
	stopDispatcher(t, d)

	assert.Len(t, pub.events, 1)
}

func TestFanout_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	pub := &recordingPublisher{err: errors.New("broker unavailable")}
	f, d := newTestFanout(t, pub, &recordingBroadcaster{})

	f.Notify(context.Background(), fieldops.KindPlantation, shared.OperationCreate, map[string]any{"id": 1})
	stopDispatcher(t, d)

	names := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range recorder.Ended() {
		names[s.Name()] = s
	}
	require.Contains(t, names, "fanout.publish")
	require.Contains(t, names, "fanout.broadcast")
	assert.Equal(t, "Error", names["fanout.publish"].Status().Code.String())
}
