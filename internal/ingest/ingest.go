package ingest

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/enrich"
	"github.com/joseph-ayodele/wildsync/internal/payload"
)

// Request is one document to ingest.
type Request struct {
	Filename string
	Data     []byte
	// ForestID names the forest to update; nil or unknown creates a new one.
	ForestID *uuid.UUID
}

// Applied holds the record values derived from the document.
type Applied struct {
	Forest payload.ForestUpdate `json:"forest"`
	Data   payload.DataUpdate   `json:"forest_data"`
}

// Result is the outcome of ingesting one document.
type Result struct {
	ForestID      uuid.UUID            `json:"forest_id"`
	Filename      string               `json:"filename"`
	Format        constants.Format     `json:"format"`
	Created       bool                 `json:"created"`
	Deduplicated  bool                 `json:"deduplicated"`
	HashHex       string               `json:"sha256"`
	Applied       Applied              `json:"applied"`
	Warnings      []string             `json:"warnings"`
	Preview       map[string]any       `json:"preview"`
	LocationGuess enrich.LocationGuess `json:"location_guess"`
}

// FileResult is the per-file outcome of a directory ingest.
type FileResult struct {
	Path   string  `json:"path"`
	Result *Result `json:"result,omitempty"`
	Err    string  `json:"error,omitempty"`
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32 `json:"scanned"`
	Matched      uint32 `json:"matched"`
	Succeeded    uint32 `json:"succeeded"`
	Deduplicated uint32 `json:"deduplicated"`
	Failed       uint32 `json:"failed"`
}

// Ingestor is the behavior the daemon and CLI depend on.
type Ingestor interface {
	// IngestPath ingests a single file.
	IngestPath(ctx context.Context, forestID *uuid.UUID, path string) (*Result, error)
	// IngestDirectory ingests all matching files under root.
	IngestDirectory(ctx context.Context, forestID *uuid.UUID, root string, skipHidden bool) ([]FileResult, DirStats, error)
}
