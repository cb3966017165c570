package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/entity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := common.DatabaseConfig{URL: filepath.Join(t.TempDir(), "db", "test.db")}
	ctx := context.Background()

	db, err := Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, Migrate(cfg, zap.NewNop()))
	return NewStore(db)
}

func ptr[T any](v T) *T { return &v }

func seedForest(t *testing.T, s *Store) (*entity.User, *entity.Forest) {
	t.Helper()
	ctx := context.Background()
	u := &entity.User{Name: "Ranger", Email: "ranger@example.org", PasswordHash: "x"}
	require.NoError(t, s.Users.Create(ctx, u))
	f := &entity.Forest{UserID: u.ID, Location: ptr("Annapurna"), Area: ptr(12.5)}
	require.NoError(t, s.Forests.Create(ctx, f))
	return u, f
}

func TestMigrate_Idempotent(t *testing.T) {
	cfg := common.DatabaseConfig{URL: filepath.Join(t.TempDir(), "m.db")}
	db, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(cfg, nil))
	require.NoError(t, Migrate(cfg, nil))

	v, dirty, err := Version(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint(3), v)
	assert.False(t, dirty)
}

func TestUsers_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, _ := seedForest(t, s)

	got, err := s.Users.GetByEmail(ctx, "ranger@example.org")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "user", got.Role)

	_, err = s.Users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestForests_UpdateAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, f := seedForest(t, s)

	f.Coordinates = ptr("28.5983,83.931")
	f.Location = nil
	require.NoError(t, s.Forests.Update(ctx, f))

	got, err := s.Forests.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Location)
	require.NotNil(t, got.Area)
	assert.InDelta(t, 12.5, *got.Area, 1e-9)
	assert.Equal(t, "28.5983,83.931", *got.Coordinates)

	list, err := s.Forests.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	missing := &entity.Forest{ID: uuid.New()}
	assert.ErrorIs(t, s.Forests.Update(ctx, missing), common.ErrNotFound)
}

func TestForestData_RoundTripsJSONColumns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, f := seedForest(t, s)

	_, err := s.ForestData.GetByForest(ctx, f.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	d := &entity.ForestData{
		ForestID:        f.ID,
		TreeCount:       ptr(int64(750)),
		SoilData:        &entity.SoilData{Health: ptr(0.6), PH: ptr(6.5)},
		CalamityHistory: entity.CalamityHistory{"fires": 1},
	}
	require.NoError(t, s.ForestData.Create(ctx, d))

	got, err := s.ForestData.GetByForest(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(750), *got.TreeCount)
	assert.InDelta(t, 0.6, *got.SoilData.Health, 1e-9)
	assert.Nil(t, got.SoilData.Moisture)
	assert.Nil(t, got.AnimalData)
	assert.Equal(t, int64(1), got.CalamityHistory["fires"])

	got.AnimalData = &entity.AnimalData{Activity: ptr(0.4)}
	require.NoError(t, s.ForestData.Update(ctx, got))
	again, err := s.ForestData.GetByForest(ctx, f.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, *again.AnimalData.Activity, 1e-9)

	dup := &entity.ForestData{ForestID: f.ID}
	assert.Error(t, s.ForestData.Create(ctx, dup), "one data row per forest")
}

func TestAnalyses_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, f := seedForest(t, s)

	base := time.Now().UTC().Add(-time.Hour)
	for i, score := range []float64{0.2, 0.5, 0.9} {
		a := &entity.Analysis{
			ForestID:        f.ID,
			RiskZones:       entity.RiskZones{Overall: score},
			Recommendations: entity.Recommendations{Severity: constants.SeverityLow, Steps: []string{"x"}},
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.Analyses.Create(ctx, a))
	}

	list, err := s.Analyses.ListByForest(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.InDelta(t, 0.9, list[0].RiskZones.Overall, 1e-9)
	assert.InDelta(t, 0.2, list[2].RiskZones.Overall, 1e-9)
	assert.Equal(t, []string{"x"}, list[0].Recommendations.Steps)

	empty, err := s.Analyses.ListByForest(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUploads_ExistsByHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, f := seedForest(t, s)

	hash := []byte{1, 2, 3, 4}
	ok, err := s.Uploads.ExistsByHash(ctx, f.ID, hash)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Uploads.Create(ctx, &entity.Upload{
		ForestID: f.ID, Filename: "survey.csv", FileExt: "csv", FileSize: 10, ContentHash: hash,
		StoredPath: "uploads/01020304.csv",
	}))
	ok, err = s.Uploads.ExistsByHash(ctx, f.ID, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := s.Uploads.ListByForest(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "survey.csv", list[0].Filename)
	assert.Equal(t, "uploads/01020304.csv", list[0].StoredPath)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var userID uuid.UUID
	err := s.WithTx(ctx, func(tx *Store) error {
		u := &entity.User{Name: "Temp", Email: "temp@example.org", PasswordHash: "x"}
		if err := tx.Users.Create(ctx, u); err != nil {
			return err
		}
		userID = u.ID
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users.GetByID(ctx, userID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestWithTx_Commits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *Store) error {
		u := &entity.User{Name: "Kept", Email: "kept@example.org", PasswordHash: "x"}
		if err := tx.Users.Create(ctx, u); err != nil {
			return err
		}
		return tx.Forests.Create(ctx, &entity.Forest{UserID: u.ID})
	})
	require.NoError(t, err)

	u, err := s.Users.GetByEmail(ctx, "kept@example.org")
	require.NoError(t, err)
	list, err := s.Forests.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestChat_CreateAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, f := seedForest(t, s)

	require.NoError(t, s.Chat.Create(ctx, &entity.ChatMessage{
		UserID: u.ID, Message: "hello", Response: "hi", CreatedAt: time.Now().UTC().Add(-time.Minute),
	}))
	require.NoError(t, s.Chat.Create(ctx, &entity.ChatMessage{
		UserID: u.ID, ForestID: &f.ID, Message: "risk?", Response: "low",
	}))

	list, err := s.Chat.ListByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "risk?", list[0].Message)
	require.NotNil(t, list[0].ForestID)
	assert.Equal(t, f.ID, *list[0].ForestID)
	assert.Nil(t, list[1].ForestID)

	one, err := s.Chat.ListByUser(ctx, u.ID, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}
