package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/entity"
)

const forestDataTable = "forest_data"

var forestDataColumns = []string{"id", "forest_id", "tree_count", "soil_data", "animal_data", "calamity_history", "updated_at"}

// ForestDataRepository handles the single measurement snapshot of each forest.
type ForestDataRepository struct {
	*base
}

// Create inserts d, assigning an id and timestamp when unset.
func (r *ForestDataRepository) Create(ctx context.Context, d *entity.ForestData) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.UpdatedAt = time.Now().UTC()
	soil, animal, calamity, err := encodeForestData(d)
	if err != nil {
		return err
	}
	query, args := r.builder().Insert(forestDataTable).
		Columns(forestDataColumns...).
		Values(d.ID, d.ForestID, intArg(d.TreeCount), soil, animal, calamity, d.UpdatedAt).
		Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		r.logger.Error("failed to create forest data", zap.String("forest_id", d.ForestID.String()), zap.Error(err))
		return err
	}
	return nil
}

// Update rewrites every measurement column of d and bumps updated_at.
func (r *ForestDataRepository) Update(ctx context.Context, d *entity.ForestData) error {
	d.UpdatedAt = time.Now().UTC()
	soil, animal, calamity, err := encodeForestData(d)
	if err != nil {
		return err
	}
	query, args := r.builder().Update(forestDataTable).
		Set("tree_count", intArg(d.TreeCount)).
		Set("soil_data", soil).
		Set("animal_data", animal).
		Set("calamity_history", calamity).
		Set("updated_at", d.UpdatedAt).
		Where(entsql.EQ("id", d.ID)).
		Query()
	res, err := r.exec(ctx, query, args)
	if err != nil {
		r.logger.Error("failed to update forest data", zap.String("forest_id", d.ForestID.String()), zap.Error(err))
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// GetByForest returns common.ErrNotFound when the forest has no data yet.
func (r *ForestDataRepository) GetByForest(ctx context.Context, forestID uuid.UUID) (*entity.ForestData, error) {
	b := r.builder()
	query, args := b.Select(forestDataColumns...).From(b.Table(forestDataTable)).
		Where(entsql.EQ("forest_id", forestID)).Limit(1).Query()

	var d *entity.ForestData
	found, err := r.queryOne(ctx, query, args, func(rows *entsql.Rows) error {
		var scanErr error
		d, scanErr = scanForestData(rows)
		return scanErr
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, common.ErrNotFound
	}
	return d, nil
}

func scanForestData(rows *entsql.Rows) (*entity.ForestData, error) {
	var (
		d                      entity.ForestData
		tc                     sql.NullInt64
		soil, animal, calamity sql.NullString
	)
	if err := rows.Scan(&d.ID, &d.ForestID, &tc, &soil, &animal, &calamity, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.TreeCount = nullInt(tc)
	if err := decodeJSON(soil, &d.SoilData); err != nil {
		return nil, fmt.Errorf("decode soil_data: %w", err)
	}
	if err := decodeJSON(animal, &d.AnimalData); err != nil {
		return nil, fmt.Errorf("decode animal_data: %w", err)
	}
	if err := decodeJSON(calamity, &d.CalamityHistory); err != nil {
		return nil, fmt.Errorf("decode calamity_history: %w", err)
	}
	return &d, nil
}

func encodeForestData(d *entity.ForestData) (soil, animal, calamity any, err error) {
	if !d.SoilData.IsEmpty() {
		if soil, err = encodeJSON(d.SoilData); err != nil {
			return nil, nil, nil, fmt.Errorf("encode soil_data: %w", err)
		}
	}
	if !d.AnimalData.IsEmpty() {
		if animal, err = encodeJSON(d.AnimalData); err != nil {
			return nil, nil, nil, fmt.Errorf("encode animal_data: %w", err)
		}
	}
	if len(d.CalamityHistory) > 0 {
		if calamity, err = encodeJSON(d.CalamityHistory); err != nil {
			return nil, nil, nil, fmt.Errorf("encode calamity_history: %w", err)
		}
	}
	return soil, animal, calamity, nil
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(ns sql.NullString, v any) error {
	if !ns.Valid || ns.String == "" || ns.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), v)
}
