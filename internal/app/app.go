// Package app wires configuration, storage and the use-case services shared by
// the daemon and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/analysis"
	"github.com/joseph-ayodele/wildsync/internal/chat"
	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/enrich"
	"github.com/joseph-ayodele/wildsync/internal/export"
	"github.com/joseph-ayodele/wildsync/internal/extract"
	"github.com/joseph-ayodele/wildsync/internal/forests"
	"github.com/joseph-ayodele/wildsync/internal/ingest"
	"github.com/joseph-ayodele/wildsync/internal/repository"
	"github.com/joseph-ayodele/wildsync/internal/server"
)

type App struct {
	Config   *common.Config
	DB       *repository.DB
	Store    *repository.Store
	Ingest   *ingest.Service
	FS       *ingest.FSIngestor
	Analysis *analysis.Service
	Export   *export.Service
	Chat     *chat.Service

	redis  *redis.Client
	logger *zap.Logger
}

// New opens and migrates the store, then builds every service.
// Redis and the LLM responder are optional and skipped when unconfigured.
func New(ctx context.Context, cfg *common.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	store := repository.NewStore(db)
	a := &App{Config: cfg, DB: db, Store: store, logger: logger}

	var enricher enrich.Enricher
	if cfg.Geocode.Enabled {
		var cache enrich.Cache
		rc, err := enrich.NewRedisClient(ctx, cfg.Geocode.RedisURL)
		switch {
		case err != nil:
			logger.Warn("geocode cache disabled", zap.Error(err))
		case rc != nil:
			a.redis = rc
			cache = enrich.NewRedisCache(rc, cfg.Geocode.CacheTTL, logger)
		}
		enricher = enrich.Chain{enrich.NewGeocoder(cfg.Geocode, nil, cache, logger)}
	}

	rec := forests.NewReconciler(store, cfg.Guest, logger)
	a.Ingest = ingest.NewService(
		ingest.Config{MaxBytes: cfg.Upload.MaxContentLength, UploadDir: cfg.Upload.Folder},
		extract.NewExtractor(extract.Config{}, logger),
		// the geocoder already runs as enrichment; the locator only classifies
		rec, enricher, enrich.NewLocator(nil), logger,
	)
	a.FS = ingest.NewFSIngestor(a.Ingest, cfg.Upload.Workers, logger)
	a.Analysis = analysis.NewService(store, cfg.Guest, logger)
	a.Export = export.NewService(a.Analysis, logger)

	var responders []chat.Responder
	if llm := chat.NewOpenAI(cfg.LLM, logger); llm != nil {
		responders = append(responders, llm)
	}
	a.Chat = chat.NewService(store, cfg.Guest, logger, responders...)
	return a, nil
}

func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("redis close failed", zap.Error(err))
		}
	}
	a.DB.Close()
}

// Logger builds the production logger, or a development one when debug is set.
func Logger(debug bool) (*zap.Logger, error) {
	if debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		return l, nil
	}
	l, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return l, nil
}
