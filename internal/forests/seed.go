package forests

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/entity"
	"github.com/joseph-ayodele/wildsync/internal/repository"
)

const (
	SeedAdminName     = "Admin"
	SeedAdminEmail    = "admin@wildsync.local"
	SeedAdminPassword = "ChangeMe123!"
	SeedForestName    = "Sample Forest"
)

// SeedResult reports what Seed wrote.
type SeedResult struct {
	Admin  *entity.User
	Forest *entity.Forest
	Data   *entity.ForestData
	// Created is false when everything already existed.
	Created bool
}

// Seed creates the admin user and a sample forest with measurements.
// Running it again leaves existing records untouched.
func Seed(ctx context.Context, store *repository.Store, logger *zap.Logger) (*SeedResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var res SeedResult
	err := store.WithTx(ctx, func(tx *repository.Store) error {
		admin, err := ensureUser(ctx, tx, IdentityID(SeedAdminEmail), SeedAdminName, SeedAdminEmail, SeedAdminPassword, RoleAdmin, logger)
		if err != nil {
			return err
		}
		res.Admin = admin

		forests, err := tx.Forests.ListByUser(ctx, admin.ID)
		if err != nil {
			return err
		}
		for _, f := range forests {
			if f.Location != nil && *f.Location == SeedForestName {
				res.Forest = f
				break
			}
		}
		if res.Forest == nil {
			loc, area, coords := SeedForestName, 1234.5, "0,0"
			res.Forest = &entity.Forest{UserID: admin.ID, Location: &loc, Area: &area, Coordinates: &coords}
			if err := tx.Forests.Create(ctx, res.Forest); err != nil {
				return err
			}
			res.Created = true
		}

		d, err := tx.ForestData.GetByForest(ctx, res.Forest.ID)
		if err == nil {
			res.Data = d
			return nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		tc, health, ph, activity, richness := int64(750), 0.6, 6.5, 0.55, int64(12)
		res.Data = &entity.ForestData{
			ForestID:        res.Forest.ID,
			TreeCount:       &tc,
			SoilData:        &entity.SoilData{Health: &health, PH: &ph},
			AnimalData:      &entity.AnimalData{Activity: &activity, SpeciesRichness: &richness},
			CalamityHistory: entity.CalamityHistory{"fires": 1, "floods": 0},
		}
		res.Created = true
		return tx.ForestData.Create(ctx, res.Data)
	})
	if err != nil {
		logger.Error("seed.failed", zap.Error(err))
		return nil, common.PersistenceFailure(err)
	}
	logger.Info("seed.ok", zap.String("forest_id", res.Forest.ID.String()), zap.Bool("created", res.Created))
	return &res, nil
}
