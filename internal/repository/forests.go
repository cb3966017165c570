package repository

import (
	"context"
	"database/sql"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/entity"
)

const forestsTable = "forests"

var forestColumns = []string{"id", "user_id", "location", "area", "coordinates", "created_at"}

// ForestRepository handles surveyed plots.
type ForestRepository struct {
	*base
}

// Create inserts f, assigning an id and timestamp when unset.
func (r *ForestRepository) Create(ctx context.Context, f *entity.Forest) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	query, args := r.builder().Insert(forestsTable).
		Columns(forestColumns...).
		Values(f.ID, f.UserID, strArg(f.Location), floatArg(f.Area), strArg(f.Coordinates), f.CreatedAt).
		Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		r.logger.Error("failed to create forest", zap.String("forest_id", f.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

// Update writes the mutable columns of f.
func (r *ForestRepository) Update(ctx context.Context, f *entity.Forest) error {
	query, args := r.builder().Update(forestsTable).
		Set("location", strArg(f.Location)).
		Set("area", floatArg(f.Area)).
		Set("coordinates", strArg(f.Coordinates)).
		Where(entsql.EQ("id", f.ID)).
		Query()
	res, err := r.exec(ctx, query, args)
	if err != nil {
		r.logger.Error("failed to update forest", zap.String("forest_id", f.ID.String()), zap.Error(err))
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// GetByID returns common.ErrNotFound when the forest does not exist.
func (r *ForestRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Forest, error) {
	b := r.builder()
	query, args := b.Select(forestColumns...).From(b.Table(forestsTable)).
		Where(entsql.EQ("id", id)).Limit(1).Query()

	var f *entity.Forest
	found, err := r.queryOne(ctx, query, args, func(rows *entsql.Rows) error {
		var scanErr error
		f, scanErr = scanForest(rows)
		return scanErr
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, common.ErrNotFound
	}
	return f, nil
}

// ListByUser returns the user's forests, oldest first.
func (r *ForestRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Forest, error) {
	b := r.builder()
	query, args := b.Select(forestColumns...).From(b.Table(forestsTable)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("created_at").
		Query()

	var out []*entity.Forest
	err := r.queryRows(ctx, query, args, func(rows *entsql.Rows) error {
		f, err := scanForest(rows)
		if err != nil {
			return err
		}
		out = append(out, f)
		return nil
	})
	return out, err
}

func scanForest(rows *entsql.Rows) (*entity.Forest, error) {
	var (
		f      entity.Forest
		loc    sql.NullString
		area   sql.NullFloat64
		coords sql.NullString
	)
	if err := rows.Scan(&f.ID, &f.UserID, &loc, &area, &coords, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.Location = nullString(loc)
	f.Area = nullFloat(area)
	f.Coordinates = nullString(coords)
	return &f, nil
}
