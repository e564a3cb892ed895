// Package db provides small database/sql helpers shared by the persisted
// stores.
package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github/chapool/go-accounts/internal/util"
)

// TxFn is executed inside a transaction managed by WithTransaction.
type TxFn func(tx *sql.Tx) error

// WithTransaction runs fn inside a transaction, committing on success and
// rolling back on error or panic. The rollback-on-panic guarantee is what
// keeps multi-row cache writes all-or-nothing when a caller abandons us.
func WithTransaction(ctx context.Context, database *sql.DB, fn TxFn) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				util.LogFromContext(ctx).Error().Err(rollbackErr).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			util.LogFromContext(ctx).Error().Err(rollbackErr).Msg("Failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	return nil
}
