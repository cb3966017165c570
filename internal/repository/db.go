package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/wildsync/internal/common"
)

// DB is an open connection to either Postgres (pgx pool) or SQLite.
type DB struct {
	drv     *entsql.Driver
	sqlDB   *sql.DB
	pool    *pgxpool.Pool
	dialect string
	logger  *zap.Logger
}

// Open connects to the database named by cfg.URL.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver() {
	case common.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	default:
		return openSQLite(ctx, cfg, logger)
	}
}

func openPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	logger.Info("connecting to database", zap.String("driver", common.DriverPostgres))
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("failed to parse database url", zap.Error(err))
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "wildsync"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return nil, err
	}

	// Wrap pool as *sql.DB for the ent driver
	db := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to database")
	return &DB{
		drv:     entsql.OpenDB(dialect.Postgres, db),
		sqlDB:   db,
		pool:    pool,
		dialect: dialect.Postgres,
		logger:  logger,
	}, nil
}

func openSQLite(ctx context.Context, cfg common.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	path := cfg.SQLitePath()
	logger.Info("connecting to database", zap.String("driver", common.DriverSQLite), zap.String("path", path))
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create database directory", zap.String("dir", dir), zap.Error(err))
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		logger.Error("failed to open database", zap.Error(err))
		return nil, err
	}
	// a single writer connection keeps transactions serialised
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		logger.Error("failed to connect to database", zap.Error(err))
		return nil, err
	}

	logger.Info("successfully connected to database")
	return &DB{
		drv:     entsql.OpenDB(dialect.SQLite, db),
		sqlDB:   db,
		dialect: dialect.SQLite,
		logger:  logger,
	}, nil
}

func sqliteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Dialect returns the ent dialect name in use.
func (d *DB) Dialect() string {
	return d.dialect
}

// Close closes the database connections gracefully
func (d *DB) Close() {
	if d == nil {
		return
	}
	d.logger.Info("closing database connections")
	if err := d.drv.Close(); err != nil {
		d.logger.Error("failed to close database driver", zap.Error(err))
	}
	if d.pool != nil {
		d.pool.Close()
	}
	d.logger.Info("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	d.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := d.sqlDB.PingContext(ctx); err != nil {
		d.logger.Error("database ping failed", zap.Error(err))
		return err
	}
	d.logger.Debug("database ping successful")
	return nil
}
