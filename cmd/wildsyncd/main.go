package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/app"
	"github.com/joseph-ayodele/wildsync/internal/async"
	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/ingest"
	"github.com/joseph-ayodele/wildsync/internal/server"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "optional YAML config file")
		debug      = flag.Bool("debug", false, "development logging")
	)
	flag.Parse()

	logger, err := app.Logger(*debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		if common.IsValidationError(err) {
			logger.Fatal("invalid configuration", zap.Error(err))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start services", zap.Error(err))
	}
	defer a.Close()

	if err := server.PingDB(ctx, a.DB, logger, cfg.Database.DialTimeout); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	// gRPC health
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen on address", zap.String("addr", cfg.Server.GRPCAddr), zap.Error(err))
	}
	grpcServer, hs := server.NewGRPCServer()
	go server.WatchHealth(ctx, hs, a.DB, 0, logger)
	go func() {
		logger.Info("grpc health listening", zap.String("addr", cfg.Server.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", zap.Error(err))
			stop()
		}
	}()

	// HTTP API
	if !*debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(server.RouterConfig{
		Uploader:  a.Ingest,
		Analyzer:  a.Analysis,
		Exporter:  a.Export,
		Assistant: a.Chat,
		DB:        a.DB,
		MaxBytes:  cfg.Upload.MaxContentLength,
		Logger:    logger,
	})
	router.MaxMultipartMemory = cfg.Upload.MaxContentLength
	httpServer := &http.Server{Addr: cfg.Server.HTTPAddr, Handler: router}
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", zap.Error(err))
			stop()
		}
	}()

	// Drop folder
	var queue *async.IngestQueue
	if cfg.Upload.WatchDir != "" {
		queue = async.NewIngestQueue(func(ctx context.Context, job async.Job) error {
			_, err := a.FS.IngestPath(ctx, job.ForestID, job.Path)
			return err
		}, logger,
			async.WithWorkers(cfg.Upload.Workers),
			async.WithQueueSize(cfg.Upload.QueueSize),
			async.WithProcessTimeout(cfg.Upload.ProcessTimeout),
		)
		events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       []string{cfg.Upload.WatchDir},
			InitialScan: true,
			Debounce:    cfg.Upload.Debounce,
			SkipHidden:  true,
		}, logger)
		if err != nil {
			logger.Fatal("failed to start watcher", zap.String("dir", cfg.Upload.WatchDir), zap.Error(err))
		}
		go func() {
			for path := range events {
				if err := queue.Enqueue(ctx, async.Job{Path: path}); err != nil {
					logger.Warn("enqueue failed", zap.String("path", path), zap.Error(err))
				}
			}
		}()
		go func() {
			for err := range errs {
				logger.Warn("watcher error", zap.Error(err))
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if queue != nil {
		queue.Shutdown(shutdownCtx)
	}
	grpcServer.GracefulStop()
	logger.Info("stopped")
}
