package database

import (
	"context"
	"database/sql"
	"fmt"
)

// ReadSnapshot makes every read in a transaction observe the same point in time.
var ReadSnapshot = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// TxRunner runs fn inside a single transaction. A non-nil error from fn rolls
// back every write made through tx.
type TxRunner interface {
	InTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error
}

// SQLTxRunner is the TxRunner backed by a database/sql pool.
type SQLTxRunner struct {
	DB *sql.DB
}

func NewTxRunner(db *sql.DB) *SQLTxRunner {
	return &SQLTxRunner{DB: db}
}

func (r *SQLTxRunner) InTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op once committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
