// Package server exposes the ingestion, analysis and assistant use cases over
// HTTP and serves gRPC health checks.
package server

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/analysis"
	"github.com/joseph-ayodele/wildsync/internal/chat"
	"github.com/joseph-ayodele/wildsync/internal/entity"
	"github.com/joseph-ayodele/wildsync/internal/ingest"
)

type Uploader interface {
	Ingest(ctx context.Context, req ingest.Request) (*ingest.Result, error)
}

type Analyzer interface {
	Start(ctx context.Context, forestID uuid.UUID) (*analysis.Outcome, error)
	History(ctx context.Context, forestID uuid.UUID) ([]*entity.Analysis, error)
}

type Exporter interface {
	ExportAnalysesXLSX(ctx context.Context, forestID uuid.UUID) ([]byte, error)
}

type Assistant interface {
	Ask(ctx context.Context, question string, forestID *uuid.UUID) (*chat.Answer, error)
}

type RouterConfig struct {
	Uploader     Uploader
	Analyzer     Analyzer
	Exporter     Exporter
	Assistant    Assistant
	DB           Pinger
	AllowOrigins []string // empty allows any origin
	MaxBytes     int64
	Logger       *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	h := &Handlers{
		uploader:  cfg.Uploader,
		analyzer:  cfg.Analyzer,
		exporter:  cfg.Exporter,
		assistant: cfg.Assistant,
		db:        cfg.DB,
		maxBytes:  cfg.MaxBytes,
		logger:    cfg.Logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), AccessLog(cfg.Logger), RequestContext())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", HeaderUserID, HeaderRequestID},
		ExposeHeaders: []string{HeaderRequestID, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", h.Health)

	api := router.Group("/api")
	{
		api.POST("/uploads", h.Upload)
		api.POST("/analysis/start", h.StartAnalysis)
		api.GET("/forests/:id/analyses", h.ListAnalyses)
		api.GET("/forests/:id/analyses/export", h.ExportAnalyses)
		api.POST("/chat", h.Chat)
	}
	return router
}
