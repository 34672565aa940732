// Package worker runs the pool that recomputes player ratings off the queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/maidx/internal/adapters/mq/queue"
	"github.com/okian/maidx/pkg/logger"
	"github.com/okian/maidx/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Job is what workers read off the queue.
type Job = queue.Job

// Calculator computes a player's B50 total for a region.
type Calculator interface {
	Calculate(ctx context.Context, playerID int64, region string) (int, error)
}

// Updater stores a freshly computed total.
type Updater interface {
	UpdateRating(ctx context.Context, playerID int64, region string, rating int) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes recompute jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue      Queue
	calculator Calculator
	updater    Updater
	name       string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	active *atomic.Int64
	logger logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, c Calculator, u Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      q,
		calculator: c,
		updater:    u,
		name:       "worker",
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		active:     new(atomic.Int64),
		logger:     logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "recompute failed",
					logger.String("job_id", j.JobID),
					logger.Int64("player_id", j.PlayerID),
					logger.String("region", j.Region),
					logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker without waiting for the queue to drain.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j Job) error {
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	total, err := w.calculator.Calculate(ctx, j.PlayerID, j.Region)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordRecomputeError()
		metrics.RecordErrorByComponent("worker", "calculate_error")
		return fmt.Errorf("job %s: calculate: %w", j.JobID, err)
	}
	if err := w.updater.UpdateRating(ctx, j.PlayerID, j.Region, total); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "update_error")
		return fmt.Errorf("job %s: update rating: %w", j.JobID, err)
	}

	w.logger.Debug(ctx, "rating recomputed",
		logger.String("job_id", j.JobID),
		logger.Int64("player_id", j.PlayerID),
		logger.String("region", j.Region),
		logger.String("reason", j.Reason),
		logger.Int("rating", total))
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers; values below 1 mean one per CPU.
func NewPool(workerCount int, q Queue, c Calculator, u Updater) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	active := new(atomic.Int64)
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range workerCount {
		w := NewInMemoryWorker(q, c, u, WithName("worker-"+strconv.Itoa(i)))
		w.active = active
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and lets the workers drain it. Workers still
// busy when ctx (capped at thirty seconds) expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			w.shutdownOnce.Do(func() { close(w.shutdown) })
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
