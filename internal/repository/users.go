package repository

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/entity"
)

const usersTable = "users"

var userColumns = []string{"id", "name", "email", "password_hash", "role", "created_at"}

// UserRepository handles acting identities.
type UserRepository struct {
	*base
}

// Create inserts u, assigning an id and timestamp when unset.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	query, args := r.builder().Insert(usersTable).
		Columns(userColumns...).
		Values(u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt).
		Query()
	if _, err := r.exec(ctx, query, args); err != nil {
		r.logger.Error("failed to create user", zap.String("email", u.Email), zap.Error(err))
		return err
	}
	return nil
}

// GetByID returns common.ErrNotFound when no user has id.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.getOne(ctx, entsql.EQ("id", id))
}

// GetByEmail returns common.ErrNotFound when no user has email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, entsql.EQ("email", email))
}

func (r *UserRepository) getOne(ctx context.Context, p *entsql.Predicate) (*entity.User, error) {
	b := r.builder()
	query, args := b.Select(userColumns...).From(b.Table(usersTable)).Where(p).Limit(1).Query()

	var u entity.User
	found, err := r.queryOne(ctx, query, args, func(rows *entsql.Rows) error {
		return rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, common.ErrNotFound
	}
	return &u, nil
}
