package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/app"
	"github.com/joseph-ayodele/wildsync/internal/common"
	repo "github.com/joseph-ayodele/wildsync/internal/repository"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "optional YAML config file")
		migrate    = flag.Bool("migrate", false, "apply pending migrations before reporting")
	)
	flag.Parse()

	logger, err := app.Logger(true)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := repo.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("opening DB", zap.Error(err))
	}
	defer db.Close()

	if err := db.HealthCheck(ctx, time.Second); err != nil {
		logger.Fatal("DB health: FAIL", zap.Error(err))
	}
	logger.Info("DB health: OK", zap.String("dialect", db.Dialect()))

	if *migrate {
		if err := repo.Migrate(cfg.Database, logger); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
	}

	v, dirty, err := repo.Version(cfg.Database)
	if err != nil {
		logger.Fatal("reading migration version", zap.Error(err))
	}
	logger.Info("schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
	if dirty {
		os.Exit(1)
	}
}
