package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/wildsync/internal/common"
)

// FSIngestor reads documents from the local filesystem.
type FSIngestor struct {
	svc     *Service
	workers int
	logger  *zap.Logger
}

func NewFSIngestor(svc *Service, workers int, logger *zap.Logger) *FSIngestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	return &FSIngestor{svc: svc, workers: workers, logger: logger}
}

func (i *FSIngestor) IngestPath(ctx context.Context, forestID *uuid.UUID, path string) (*Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("abs path error", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	if !AllowedPath(abs) {
		return nil, common.InputRejected("Unsupported file type", common.ErrUnsupported)
	}

	info, err := os.Stat(abs)
	if err != nil {
		i.logger.Error("stat error", zap.String("path", abs), zap.Error(err))
		return nil, err
	}
	if info.IsDir() {
		return nil, common.InputRejected(fmt.Sprintf("%s is a directory", abs), nil)
	}
	if limit := i.svc.cfg.MaxBytes; limit > 0 && info.Size() > limit {
		return nil, common.InputRejected(fmt.Sprintf("File exceeds the %d byte limit", limit), nil)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		i.logger.Error("read error", zap.String("path", abs), zap.Error(err))
		return nil, err
	}
	return i.svc.Ingest(ctx, Request{Filename: filepath.Base(abs), Data: data, ForestID: forestID})
}

// IngestDirectory walks root, skips hidden entries if requested, and ingests
// matching files with up to workers in parallel. Per-file failures are
// reported in the results; only a failed walk returns an error.
func (i *FSIngestor) IngestDirectory(ctx context.Context, forestID *uuid.UUID, root string, skipHidden bool) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var (
		stats   DirStats
		results []FileResult
		paths   []string
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedPath(path) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	out := make([]FileResult, len(paths))
	var succeeded, dedup, failed atomic.Uint32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for idx, path := range paths {
		g.Go(func() error {
			r, err := i.IngestPath(gctx, forestID, path)
			if err != nil {
				out[idx] = FileResult{Path: path, Err: common.PublicMessage(err)}
				failed.Add(1)
				i.logger.Warn("ingest.file.failed", zap.String("path", path), zap.Error(err))
				return nil
			}
			out[idx] = FileResult{Path: path, Result: r}
			succeeded.Add(1)
			if r.Deduplicated {
				dedup.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.Succeeded = succeeded.Load()
	stats.Deduplicated = dedup.Load()
	stats.Failed += failed.Load()
	results = append(results, out...)

	i.logger.Info("ingest.directory.done",
		zap.String("root", root),
		zap.Uint32("scanned", stats.Scanned),
		zap.Uint32("matched", stats.Matched),
		zap.Uint32("succeeded", stats.Succeeded),
		zap.Uint32("deduplicated", stats.Deduplicated),
		zap.Uint32("failed", stats.Failed),
	)
	return results, stats, ctx.Err()
}
