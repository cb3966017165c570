// Package ingest turns uploaded survey documents into forest records.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/enrich"
	"github.com/joseph-ayodele/wildsync/internal/extract"
	"github.com/joseph-ayodele/wildsync/internal/forests"
	"github.com/joseph-ayodele/wildsync/internal/payload"
)

type Config struct {
	MaxBytes  int64  // largest accepted document; 0 means unlimited
	UploadDir string // accepted documents are kept here by content hash; "" keeps nothing
}

// Service runs extract, enrich, payload and reconcile for one document.
type Service struct {
	cfg        Config
	extractor  *extract.Extractor
	reconciler *forests.Reconciler
	enricher   enrich.Enricher // optional
	locator    *enrich.Locator
	logger     *zap.Logger
}

// NewService wires the pipeline. enricher and locator may be nil.
func NewService(cfg Config, ex *extract.Extractor, rec *forests.Reconciler, enricher enrich.Enricher, locator *enrich.Locator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ex == nil {
		ex = extract.NewExtractor(extract.Config{}, logger)
	}
	if locator == nil {
		locator = enrich.NewLocator(nil)
	}
	return &Service{
		cfg:        cfg,
		extractor:  ex,
		reconciler: rec,
		enricher:   enricher,
		locator:    locator,
		logger:     logger,
	}
}

// Ingest validates, extracts and applies one document. Nothing is written when
// the document is rejected.
func (s *Service) Ingest(ctx context.Context, req Request) (*Result, error) {
	name := filepath.Base(strings.TrimSpace(req.Filename))
	ext := constants.NormalizeExt(filepath.Ext(name))
	log := s.logger.With(zap.String("filename", name), zap.String("ext", ext))

	switch {
	case name == "" || name == "." || name == string(filepath.Separator):
		return nil, common.InputRejected("No selected file", nil)
	case !constants.IsAllowedExt(ext):
		log.Warn("ingest.rejected.extension")
		return nil, common.InputRejected("Unsupported file type", common.ErrUnsupported)
	case len(req.Data) == 0:
		log.Warn("ingest.rejected.empty")
		return nil, common.InputRejected("Empty file", nil)
	case s.cfg.MaxBytes > 0 && int64(len(req.Data)) > s.cfg.MaxBytes:
		log.Warn("ingest.rejected.too_large", zap.Int("bytes", len(req.Data)))
		return nil, common.InputRejected(fmt.Sprintf("File exceeds the %d byte limit", s.cfg.MaxBytes), nil)
	}

	ex, err := s.extractor.Extract(ctx, ext, req.Data)
	if err != nil {
		return nil, err
	}

	fields := ex.Fields
	var added extract.Fields
	if s.enricher != nil {
		var ok bool
		if added, ok = s.enricher.Enrich(ctx, fields); ok {
			log.Info("ingest.enriched", zap.Int("fields", len(added)))
			fields.Merge(added)
		}
	}
	guess := s.locator.Detect(ctx, ex.GPS, fields, added)

	p := payload.Build(fields)
	sum := sha256.Sum256(req.Data)
	hashHex := hex.EncodeToString(sum[:])
	stored, fresh, err := s.keep(hashHex, ext, req.Data)
	if err != nil {
		log.Error("ingest.store.failed", zap.Error(err))
		return nil, common.PersistenceFailure(err)
	}
	rec, err := s.reconciler.Apply(ctx, req.ForestID, p, &forests.Source{
		Filename: name,
		Ext:      ext,
		Size:     int64(len(req.Data)),
		Hash:     sum[:],
		Path:     stored,
	})
	if err != nil {
		if fresh {
			if rmErr := os.Remove(stored); rmErr != nil {
				log.Warn("ingest.store.cleanup_failed", zap.String("path", stored), zap.Error(rmErr))
			}
		}
		return nil, err
	}

	log.Info("ingest.upload.ok",
		zap.String("forest_id", rec.Forest.ID.String()),
		zap.String("format", string(ex.Format)),
		zap.Int("warnings", len(p.Warnings)),
		zap.Bool("created", rec.Created),
		zap.Bool("deduplicated", rec.Deduplicated),
	)
	return &Result{
		ForestID:      rec.Forest.ID,
		Filename:      name,
		Format:        ex.Format,
		Created:       rec.Created,
		Deduplicated:  rec.Deduplicated,
		HashHex:       hashHex,
		Applied:       Applied{Forest: p.Forest, Data: p.Data},
		Warnings:      p.Warnings,
		Preview:       ex.Preview,
		LocationGuess: guess,
	}, nil
}

// keep writes data to UploadDir under its content hash. fresh reports whether
// this call created the file; identical bytes share one file.
func (s *Service) keep(hashHex, ext string, data []byte) (path string, fresh bool, err error) {
	if s.cfg.UploadDir == "" {
		return "", false, nil
	}
	path = filepath.Join(s.cfg.UploadDir, hashHex+"."+ext)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", false, fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", false, fmt.Errorf("write upload: %w", err)
	}
	return path, true, nil
}
