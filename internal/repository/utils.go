package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/mossfall/grottobot/internal/logger"
)

// SafeRollback rolls back a transaction and logs any error
func SafeRollback(ctx context.Context, tx Tx) {
	if err := tx.Rollback(ctx); err != nil {
		// Rollback after a successful commit reports ErrTxClosed; not noise worth logging.
		if !errors.Is(err, pgx.ErrTxClosed) {
			logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
		}
	}
}
