package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"simmarket/models"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

type PostgresRepository struct {
	db        *sql.DB
	txTimeout time.Duration
}

func NewPostgresRepository(db *sql.DB, txTimeout time.Duration) PostgresRepository {
	return PostgresRepository{db: db, txTimeout: txTimeout}
}

// Migrate creates missing tables and indexes. It is safe to run on every start.
func (r PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// beginAtomic starts a transaction detached from the caller's cancellation and
// bounded by txTimeout. The returned cancel func must be called once the
// transaction is finished.
func (r PostgresRepository) beginAtomic(ctx context.Context) (*sql.Tx, context.Context, context.CancelFunc, error) {
	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.txTimeout)
	tx, err := r.db.BeginTx(txCtx, nil)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, txCtx, cancel, nil
}

// translate maps driver errors onto the domain sentinels.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w", what, models.ErrConflict)
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w", what, models.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}
