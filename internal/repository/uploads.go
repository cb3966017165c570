package repository

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/entity"
)

const uploadsTable = "uploads"

var uploadColumns = []string{"id", "forest_id", "filename", "file_ext", "file_size", "content_hash", "stored_path", "uploaded_at"}

// UploadRepository records the documents applied to each forest.
type UploadRepository struct {
	*base
}

// Create inserts u, assigning an id and timestamp when unset.
func (r *UploadRepository) Create(ctx context.Context, u *entity.Upload) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.UploadedAt.IsZero() {
		u.UploadedAt = time.Now().UTC()
	}
	query, args := r.builder().Insert(uploadsTable).
		Columns(uploadColumns...).
		Values(u.ID, u.ForestID, u.Filename, u.FileExt, u.FileSize, u.ContentHash, u.StoredPath, u.UploadedAt).
		Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		r.logger.Error("failed to record upload", zap.String("filename", u.Filename), zap.Error(err))
		return err
	}
	return nil
}

// ExistsByHash reports whether the same content was already applied to the forest.
func (r *UploadRepository) ExistsByHash(ctx context.Context, forestID uuid.UUID, hash []byte) (bool, error) {
	b := r.builder()
	query, args := b.Select("id").From(b.Table(uploadsTable)).
		Where(entsql.And(entsql.EQ("forest_id", forestID), entsql.EQ("content_hash", hash))).
		Limit(1).
		Query()
	return r.queryOne(ctx, query, args, func(*entsql.Rows) error { return nil })
}

// ListByForest returns the uploads applied to a forest, newest first.
func (r *UploadRepository) ListByForest(ctx context.Context, forestID uuid.UUID) ([]*entity.Upload, error) {
	b := r.builder()
	query, args := b.Select(uploadColumns...).From(b.Table(uploadsTable)).
		Where(entsql.EQ("forest_id", forestID)).
		OrderBy(entsql.Desc("uploaded_at")).
		Query()

	var out []*entity.Upload
	err := r.queryRows(ctx, query, args, func(rows *entsql.Rows) error {
		var u entity.Upload
		if err := rows.Scan(&u.ID, &u.ForestID, &u.Filename, &u.FileExt, &u.FileSize, &u.ContentHash, &u.StoredPath, &u.UploadedAt); err != nil {
			return err
		}
		out = append(out, &u)
		return nil
	})
	return out, err
}
