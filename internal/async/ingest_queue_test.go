package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIngestQueue_DrainsOnShutdown(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	q := NewIngestQueue(func(_ context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, job.Path)
		return nil
	}, zap.NewNop(), WithWorkers(2), WithQueueSize(1))

	ctx := context.Background()
	for _, p := range []string{"a.csv", "b.csv", "c.csv", "d.pdf"} {
		require.NoError(t, q.Enqueue(ctx, Job{Path: p}))
	}

	sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	q.Shutdown(sctx)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a.csv", "b.csv", "c.csv", "d.pdf"}, seen)
}

func TestIngestQueue_RejectsAfterShutdown(t *testing.T) {
	q := NewIngestQueue(func(context.Context, Job) error { return nil }, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{Path: "late.csv"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestIngestQueue_HandlerErrorsAndPanicsDoNotStopWorkers(t *testing.T) {
	var (
		mu  sync.Mutex
		ok  int
		ids = map[string]bool{}
	)
	q := NewIngestQueue(func(ctx context.Context, job Job) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		mu.Lock()
		ids[job.TraceID] = true
		mu.Unlock()
		switch job.Path {
		case "bad":
			return errors.New("boom")
		case "panic":
			panic("kaboom")
		}
		mu.Lock()
		ok++
		mu.Unlock()
		return nil
	}, zap.NewNop(), WithWorkers(1), WithProcessTimeout(time.Second))

	ctx := context.Background()
	for _, p := range []string{"bad", "panic", "good"} {
		require.NoError(t, q.Enqueue(ctx, Job{Path: p}))
	}
	q.Shutdown(ctx)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, ok)
	assert.Len(t, ids, 3, "each job gets a trace id")
}

func TestIngestQueue_EnqueueHonoursContextWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	q := NewIngestQueue(func(context.Context, Job) error {
		started <- struct{}{}
		<-release
		return nil
	}, zap.NewNop(), WithWorkers(1), WithQueueSize(1))

	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "first"}))
	<-started
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "second"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{Path: "third"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	q.Shutdown(context.Background())
}
