// Package async runs ingestion jobs on a bounded worker pool.
package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is one file waiting to be ingested.
type Job struct {
	Path        string
	ForestID    *uuid.UUID
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
