package repository

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/entity"
)

const chatTable = "chat_history"

var chatColumns = []string{"id", "user_id", "forest_id", "message", "response", "created_at"}

// ChatRepository keeps the assistant conversation log.
type ChatRepository struct {
	*base
}

// Create inserts m, assigning an id and timestamp when unset.
func (r *ChatRepository) Create(ctx context.Context, m *entity.ChatMessage) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	var forestID any
	if m.ForestID != nil {
		forestID = *m.ForestID
	}
	query, args := r.builder().Insert(chatTable).
		Columns(chatColumns...).
		Values(m.ID, m.UserID, forestID, m.Message, m.Response, m.CreatedAt).
		Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		r.logger.Error("failed to record chat message", zap.String("user_id", m.UserID.String()), zap.Error(err))
		return err
	}
	return nil
}

// ListByUser returns the user's most recent messages, newest first.
func (r *ChatRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.ChatMessage, error) {
	b := r.builder()
	sel := b.Select(chatColumns...).From(b.Table(chatTable)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	var out []*entity.ChatMessage
	err := r.queryRows(ctx, query, args, func(rows *entsql.Rows) error {
		var (
			m        entity.ChatMessage
			forestID uuid.NullUUID
		)
		if err := rows.Scan(&m.ID, &m.UserID, &forestID, &m.Message, &m.Response, &m.CreatedAt); err != nil {
			return err
		}
		if forestID.Valid {
			id := forestID.UUID
			m.ForestID = &id
		}
		out = append(out, &m)
		return nil
	})
	return out, err
}
