package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Handler processes one job. The context carries the per-job timeout.
type Handler func(ctx context.Context, job Job) error

type IngestQueue struct {
	handle  Handler
	logger  *zap.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*IngestQueue)

func WithWorkers(n int) Option {
	return func(q *IngestQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *IngestQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *IngestQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewIngestQueue(handle Handler, logger *zap.Logger, opts ...Option) *IngestQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &IngestQueue{
		handle:  handle,
		logger:  logger,
		workers: 4,
		timeout: 2 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *IngestQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				log := q.logger.With(zap.Int("worker_id", workerID))
				log.Debug("worker started")

				for job := range q.ch {
					q.run(log, job)
				}

				log.Debug("worker stopped")
			}(i + 1)
		}
	})
}

func (q *IngestQueue) run(log *zap.Logger, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			log.Error("ingest job panicked", zap.String("path", job.Path), zap.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := q.handle(ctx, job); err != nil {
		log.Error("ingest job failed",
			zap.String("path", job.Path),
			zap.String("trace_id", job.TraceID),
			zap.Error(err))
		return
	}
	log.Info("ingest job done",
		zap.String("path", job.Path),
		zap.String("trace_id", job.TraceID),
		zap.Duration("queued", start.Sub(job.SubmittedAt)),
		zap.Duration("took", time.Since(start)))
}

// Enqueue blocks while the queue is full, until ctx is done.
func (q *IngestQueue) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	if job.TraceID == "" {
		job.TraceID = uuid.NewString()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", zap.String("path", job.Path))
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queued file for ingestion", zap.String("path", job.Path))
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", zap.String("path", job.Path))
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued jobs to finish or ctx to end.
func (q *IngestQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}

var _ Queue = (*IngestQueue)(nil)
