package dbpkg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var (
	// ErrNoTx indicates that a statement requires a transaction but ctx carries none.
	ErrNoTx = errors.New("no transaction in context")
	// ErrCommit indicates that the database refused to commit the transaction.
	ErrCommit = errors.New("commit failed")
)

// TxManager runs functions inside a single database transaction.
type TxManager struct {
	db   *sql.DB
	opts *sql.TxOptions
}

// NewTxManager returns TxManager that begins transactions with the given isolation level.
func NewTxManager(db *sql.DB, isolation sql.IsolationLevel) *TxManager {
	return &TxManager{
		db:   db,
		opts: &sql.TxOptions{Isolation: isolation},
	}
}

// WithinTx begins a transaction, passes it to fn through the context and commits
// when fn returns nil. Any other exit path rolls the transaction back and hands
// the pooled connection back to the pool.
//
// Commit failures are reported wrapped in ErrCommit.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	l := zerolog.Ctx(ctx)

	tx, err := m.db.BeginTx(ctx, m.opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Msg("cannot rollback transaction")
		}
	}()

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}

	return nil
}
