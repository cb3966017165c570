package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/db/migrations"
	"github.com/joseph-ayodele/wildsync/internal/common"
)

// Migrate applies every pending migration for the configured dialect.
// It uses its own connection because the migrate drivers close the handle they are given.
func Migrate(cfg common.DatabaseConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeMigrator(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("migrate.up.failed", zap.String("driver", cfg.Driver()), zap.Error(err))
		return fmt.Errorf("migrate up: %w", err)
	}
	v, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migrate version: %w", err)
	}
	logger.Info("migrate.up.ok", zap.String("driver", cfg.Driver()), zap.Uint("version", v), zap.Bool("dirty", dirty))
	return nil
}

// Version reports the applied schema version; zero when nothing has been applied.
func Version(cfg common.DatabaseConfig) (uint, bool, error) {
	m, err := newMigrator(cfg)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrator(m, zap.NewNop())

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func newMigrator(cfg common.DatabaseConfig) (*migrate.Migrate, error) {
	dir := cfg.Driver()
	src, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	var (
		db  *sql.DB
		drv database.Driver
	)
	switch dir {
	case common.DriverPostgres:
		if db, err = sql.Open("pgx", cfg.URL); err != nil {
			return nil, err
		}
		drv, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	default:
		if db, err = sql.Open("sqlite", sqliteDSN(cfg.SQLitePath())); err != nil {
			return nil, err
		}
		drv, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dir, drv)
	if err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("new migrator: %w", err)
	}
	return m, nil
}

func closeMigrator(m *migrate.Migrate, logger *zap.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		logger.Warn("migrate.close", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
	}
}
