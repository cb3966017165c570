package repository

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"go.uber.org/zap"
)

// Store groups the repositories over one executor: the pooled driver or a transaction.
type Store struct {
	db     *DB
	q      dialect.ExecQuerier
	logger *zap.Logger

	Users      *UserRepository
	Forests    *ForestRepository
	ForestData *ForestDataRepository
	Analyses   *AnalysisRepository
	Uploads    *UploadRepository
	Chat       *ChatRepository
}

// NewStore binds all repositories to db.
func NewStore(db *DB) *Store {
	return newStore(db, db.drv)
}

func newStore(db *DB, q dialect.ExecQuerier) *Store {
	s := &Store{db: db, q: q, logger: db.logger}
	b := &base{q: q, dialect: db.dialect, logger: db.logger}
	s.Users = &UserRepository{base: b}
	s.Forests = &ForestRepository{base: b}
	s.ForestData = &ForestDataRepository{base: b}
	s.Analyses = &AnalysisRepository{base: b}
	s.Uploads = &UploadRepository{base: b}
	s.Chat = &ChatRepository{base: b}
	return s
}

// WithTx runs fn against a transaction-bound Store. fn's error rolls the
// transaction back; otherwise it is committed. Inside fn only tx may be used.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) (err error) {
	if _, nested := s.q.(dialect.Tx); nested {
		return fn(s)
	}
	t, err := s.db.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = t.Rollback()
			panic(p)
		}
	}()

	if err = fn(newStore(s.db, t)); err != nil {
		if rerr := t.Rollback(); rerr != nil {
			s.logger.Error("tx.rollback.failed", zap.Error(rerr))
		}
		return err
	}
	if err = t.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// base carries what every repository needs to build and run statements.
type base struct {
	q       dialect.ExecQuerier
	dialect string
	logger  *zap.Logger
}

func (b *base) builder() *entsql.DialectBuilder {
	return entsql.Dialect(b.dialect)
}

func (b *base) exec(ctx context.Context, query string, args []any) (sql.Result, error) {
	var res sql.Result
	if err := b.q.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// queryRows runs query and calls scan for each row.
func (b *base) queryRows(ctx context.Context, query string, args []any, scan func(*entsql.Rows) error) error {
	var rows entsql.Rows
	if err := b.q.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(&rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// queryOne scans the first row; ok is false when there is none.
func (b *base) queryOne(ctx context.Context, query string, args []any, scan func(*entsql.Rows) error) (bool, error) {
	found := false
	err := b.queryRows(ctx, query, args, func(r *entsql.Rows) error {
		if found {
			return nil
		}
		found = true
		return scan(r)
	})
	return found, err
}

func strArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func floatArg(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func intArg(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func nullInt(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	i := ni.Int64
	return &i
}
