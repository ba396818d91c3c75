package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fieldops/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// JobFunc is one unit of fan-out work
type JobFunc func(ctx context.Context) error

type job struct {
	ctx  context.Context
	name string
	fn   JobFunc
}

// Dispatcher runs fan-out jobs on a fixed pool of workers fed by a bounded queue.
// Submit never blocks the caller: when the queue is full the job runs on its own
// goroutine instead, so every accepted job is attempted exactly once. Jobs are
// only rejected after Stop. A failing or panicking job is logged and never affects
// other jobs.
type Dispatcher struct {
	queue   chan job
	workers int
	logger  *zap.Logger

	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup

	dropped    atomic.Int64
	overflowed atomic.Int64
	failed     atomic.Int64
}

// NewDispatcher creates a dispatcher with the given worker count and queue capacity
func NewDispatcher(workers, queueSize int, zl *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if zl == nil {
		zl = zap.NewNop()
	}
	return &Dispatcher{
		queue:   make(chan job, queueSize),
		workers: workers,
		logger:  zl.Named("fanout"),
	}
}

// Start launches the workers. Calling Start more than once has no effect.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	d.spawnWorkers()

	d.logger.Info("fan-out dispatcher started",
		zap.Int("workers", d.workers),
		zap.Int("queue_size", cap(d.queue)),
	)
}

// Submit enqueues fn under name. ctx is detached from cancellation so the job
// outlives the request that produced it. Returns false only when the dispatcher
// has been stopped.
func (d *Dispatcher) Submit(ctx context.Context, name string, fn JobFunc) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(ctx, name, "dispatcher stopped")
		return false
	}

	j := job{ctx: context.WithoutCancel(ctx), name: name, fn: fn}
	select {
	case d.queue <- j:
	default:
		// Stop cannot begin waiting while the read lock is held
		d.overflowed.Add(1)
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.run(j)
		}()
		logger.WithLogger(ctx, d.logger).Warn("fan-out queue full, running job on overflow goroutine",
			zap.String("job", name),
			zap.Int("queue_size", cap(d.queue)),
		)
	}
	return true
}

func (d *Dispatcher) spawnWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

func (d *Dispatcher) drop(ctx context.Context, name, reason string) {
	d.dropped.Add(1)
	logger.WithLogger(ctx, d.logger).Warn("fan-out job dropped",
		zap.String("job", name),
		zap.String("reason", reason),
	)
}

// Stop stops accepting jobs and waits for queued, in-flight and overflow jobs to finish, bounded by ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	if !d.started {
		// drain whatever was queued before Start
		d.started = true
		d.spawnWorkers()
	}
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("fan-out dispatcher stopped",
			zap.Int64("dropped", d.dropped.Load()),
			zap.Int64("overflowed", d.overflowed.Load()),
			zap.Int64("failed", d.failed.Load()),
		)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for fan-out jobs: %w", ctx.Err())
	}
}

// Dropped returns the number of jobs rejected by Submit after Stop
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Overflowed returns the number of jobs that found the queue full and ran on their own goroutine
func (d *Dispatcher) Overflowed() int64 {
	return d.overflowed.Load()
}

// Failed returns the number of jobs that returned an error or panicked
func (d *Dispatcher) Failed() int64 {
	return d.failed.Load()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.queue {
		d.run(j)
	}
}

func (d *Dispatcher) run(j job) {
	log := logger.WithLogger(j.ctx, d.logger).With(zap.String("job", j.name))
	defer func() {
		if r := recover(); r != nil {
			d.failed.Add(1)
			log.Error("fan-out job panicked",
				zap.Any("panic", r),
				zap.Stack("stacktrace"),
			)
		}
	}()

	if err := j.fn(j.ctx); err != nil {
		d.failed.Add(1)
		log.Error("fan-out job failed", zap.Error(err))
	}
}
