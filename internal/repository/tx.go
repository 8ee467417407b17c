package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Runner wraps a database handle with a run-in-transaction primitive.
// Every multi-step mutation in the system goes through it: the overlap
// check plus booking insert, and the stock check plus order insert plus
// decrement, each execute as one atomic unit.  Correctness under
// concurrent instances rests entirely on this boundary; there are no
// application-level locks.
type Runner struct {
	db *sql.DB
}

// NewRunner returns a Runner bound to the given database.
func NewRunner(db *sql.DB) *Runner { return &Runner{db: db} }

// DB exposes the underlying handle for read-only repository constructors.
func (r *Runner) DB() *sql.DB { return r.db }

// RunInTransaction begins a transaction, invokes fn and commits when fn
// returns nil.  Any error from fn rolls the transaction back and is
// returned unchanged so callers can match sentinel and typed errors.  A
// panic inside fn also rolls back before re-panicking.
func (r *Runner) RunInTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}
