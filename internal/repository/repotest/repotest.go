// Package repotest opens migrated SQLite stores for tests.
package repotest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/repository"
)

// Open returns a migrated store backed by a file in t.TempDir().
// The database is closed when the test ends.
func Open(t testing.TB) (*repository.Store, *repository.DB) {
	t.Helper()
	cfg := common.DatabaseConfig{URL: filepath.Join(t.TempDir(), "wildsync.db")}
	db, err := repository.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, repository.Migrate(cfg, zap.NewNop()))
	return repository.NewStore(db), db
}
