package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"vecinu/internal/middleware"
	"vecinu/internal/observability"

	"github.com/sourcegraph/conc/panics"
)

const (
	DefaultWorkers    = 2
	DefaultQueueSize  = 256
	DefaultJobTimeout = 5 * time.Second
)

// ErrClosed is returned by Close when called twice.
var ErrClosed = errors.New("dispatcher closed")

// Job is a unit of notification work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type queued struct {
	ctx context.Context
	job Job
}

// Dispatcher runs notification jobs on a fixed pool of workers fed by a
// bounded queue. Enqueue never blocks; when the queue is full the job is dropped.
type Dispatcher struct {
	queue   chan queued
	timeout time.Duration
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts workers goroutines reading from a queue of size
// queueSize. Non-positive values fall back to the defaults.
func NewDispatcher(workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	d := &Dispatcher{
		queue:   make(chan queued, queueSize),
		timeout: DefaultJobTimeout,
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

// Enqueue schedules job. The job keeps ctx's values (request id, user id) but
// not its cancellation. It reports whether the job was accepted.
func (d *Dispatcher) Enqueue(ctx context.Context, job Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		observability.NotificationJobs.WithLabelValues("dropped").Inc()
		middleware.Logger.WarnContext(ctx, "notification dispatcher closed, dropping job", slog.String("job", job.Name))
		return false
	}

	select {
	case d.queue <- queued{ctx: context.WithoutCancel(ctx), job: job}:
		observability.NotificationJobs.WithLabelValues("enqueued").Inc()
		observability.NotificationQueueDepth.Inc()
		return true
	default:
		observability.NotificationJobs.WithLabelValues("dropped").Inc()
		middleware.Logger.WarnContext(ctx, "notification queue full, dropping job", slog.String("job", job.Name))
		return false
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for q := range d.queue {
		observability.NotificationQueueDepth.Dec()
		d.run(q)
	}
}

func (d *Dispatcher) run(q queued) {
	ctx, cancel := context.WithTimeout(q.ctx, d.timeout)
	defer cancel()

	var err error
	recovered := panics.Try(func() { err = q.job.Run(ctx) })
	switch {
	case recovered != nil:
		observability.NotificationJobs.WithLabelValues("panic").Inc()
		middleware.Logger.ErrorContext(ctx, "notification job panicked",
			slog.String("job", q.job.Name), slog.String("panic", recovered.String()))
	case err != nil:
		observability.NotificationJobs.WithLabelValues("failed").Inc()
		middleware.Logger.ErrorContext(ctx, "notification job failed",
			slog.String("job", q.job.Name), slog.String("error", err.Error()))
	default:
		observability.NotificationJobs.WithLabelValues("delivered").Inc()
	}
}

// Close stops accepting jobs and waits for queued jobs to finish or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
