package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/entity"
)

const analysesTable = "analyses"

var analysisColumns = []string{"id", "forest_id", "risk_zones", "recommendations", "heat_map_data", "created_at"}

// AnalysisRepository stores immutable risk assessments. There is no update path.
type AnalysisRepository struct {
	*base
}

// Create inserts a, assigning an id and timestamp when unset.
func (r *AnalysisRepository) Create(ctx context.Context, a *entity.Analysis) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	zones, err := encodeJSON(a.RiskZones)
	if err != nil {
		return fmt.Errorf("encode risk_zones: %w", err)
	}
	recs, err := encodeJSON(a.Recommendations)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	heat, err := encodeJSON(a.HeatMapData)
	if err != nil {
		return fmt.Errorf("encode heat_map_data: %w", err)
	}

	query, args := r.builder().Insert(analysesTable).
		Columns(analysisColumns...).
		Values(a.ID, a.ForestID, zones, recs, heat, a.CreatedAt).
		Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		r.logger.Error("failed to create analysis", zap.String("forest_id", a.ForestID.String()), zap.Error(err))
		return err
	}
	return nil
}

// ListByForest returns the forest's analyses, newest first.
func (r *AnalysisRepository) ListByForest(ctx context.Context, forestID uuid.UUID) ([]*entity.Analysis, error) {
	b := r.builder()
	query, args := b.Select(analysisColumns...).From(b.Table(analysesTable)).
		Where(entsql.EQ("forest_id", forestID)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Query()

	out := []*entity.Analysis{}
	err := r.queryRows(ctx, query, args, func(rows *entsql.Rows) error {
		var (
			a                 entity.Analysis
			zones, recs, heat sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.ForestID, &zones, &recs, &heat, &a.CreatedAt); err != nil {
			return err
		}
		if err := decodeJSON(zones, &a.RiskZones); err != nil {
			return fmt.Errorf("decode risk_zones: %w", err)
		}
		if err := decodeJSON(recs, &a.Recommendations); err != nil {
			return fmt.Errorf("decode recommendations: %w", err)
		}
		if err := decodeJSON(heat, &a.HeatMapData); err != nil {
			return fmt.Errorf("decode heat_map_data: %w", err)
		}
		out = append(out, &a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
