package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/forests"
	"github.com/joseph-ayodele/wildsync/internal/ingest"
)

func testConfig(t *testing.T) *common.Config {
	return &common.Config{
		Database: common.DatabaseConfig{URL: filepath.Join(t.TempDir(), "app.db")},
		Upload:   common.UploadConfig{Folder: filepath.Join(t.TempDir(), "uploads"), MaxContentLength: 1 << 20, Workers: 2},
		Guest:    common.GuestConfig{Name: "Guest", Email: "guest@wildsync.local", Password: "guest"},
	}
}

func TestApp_EndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	a, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	res, err := a.Ingest.Ingest(ctx, ingest.Request{
		Filename: "survey.csv",
		Data:     []byte("Tree Count,Soil Health,Animal Activity\n100,0.2,1.0\n"),
	})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cfg.Upload.Folder, res.HashHex+".csv"))

	out, err := a.Analysis.Start(ctx, res.ForestID)
	require.NoError(t, err)
	assert.Equal(t, constants.AnalysisStatusOK, out.Status)
	assert.InDelta(t, 0.78, out.Analysis.RiskZones.Overall, 1e-9)

	data, err := a.Export.ExportAnalysesXLSX(ctx, res.ForestID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	ans, err := a.Chat.Ask(ctx, "what is the risk?", &res.ForestID)
	require.NoError(t, err)
	assert.NotEmpty(t, ans.Reply)

	seed, err := forests.Seed(ctx, a.Store, nil)
	require.NoError(t, err)
	assert.True(t, seed.Created)
}
