package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

type txKey struct{}

// Transactor implements domain.Transactor on top of sqlx
type Transactor struct {
	db *sqlx.DB
}

// NewTransactor creates a transactor bound to db
func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx runs fn in a transaction carried by the context. Nested calls join
// the outer transaction.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// store is embedded by every repository
type store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func newStore(db *sqlx.DB, logger *slog.Logger) store {
	if logger == nil {
		logger = slog.Default()
	}
	return store{db: db, logger: logger}
}

// ext returns the transaction in ctx, or the pool
func (s store) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return s.db
}

func (s store) get(ctx context.Context, dest any, query string, args ...any) error {
	q := s.ext(ctx)
	return sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
}

func (s store) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	q := s.ext(ctx)
	return sqlx.SelectContext(ctx, q, dest, q.Rebind(query), args...)
}

func (s store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	q := s.ext(ctx)
	return q.ExecContext(ctx, q.Rebind(query), args...)
}

func (s store) namedExec(ctx context.Context, query string, arg any) (sql.Result, error) {
	return sqlx.NamedExecContext(ctx, s.ext(ctx), query, arg)
}

func (s store) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := s.get(ctx, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

// getOne maps sql.ErrNoRows to a NotFound error for entity
func (s store) getOne(ctx context.Context, entity string, dest any, query string, args ...any) error {
	err := s.get(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(entity)
	}
	if err != nil {
		s.logger.Error("query failed",
			slog.String("entity", entity),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to get %s: %w", entity, err)
	}
	return nil
}

// mustAffect turns an update or delete that matched no row into NotFound
func mustAffect(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.NotFound(entity)
	}
	return nil
}
