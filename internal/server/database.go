package server

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/repository"
)

// ConnectDB opens the configured store and applies pending migrations.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *zap.Logger) (*repository.DB, error) {
	logger.Info("connecting to database", zap.String("driver", cfg.Driver()))
	db, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return nil, err
	}
	if err := repository.Migrate(cfg, logger); err != nil {
		db.Close()
		logger.Error("failed to migrate database", zap.Error(err))
		return nil, err
	}

	logger.Info("successfully connected to database", zap.String("dialect", db.Dialect()))
	return db, nil
}

// Pinger is satisfied by *repository.DB.
type Pinger interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, db Pinger, logger *zap.Logger, timeout time.Duration) error {
	logger.Debug("pinging database")
	if err := db.HealthCheck(ctx, timeout); err != nil {
		logger.Error("database ping failed", zap.Error(err))
		return err
	}
	logger.Debug("database ping successful")
	return nil
}
