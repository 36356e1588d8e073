package logging

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// SafeCloseWithLogging closes a resource and logs any errors that occur
func SafeCloseWithLogging(closer io.Closer, logger *slog.Logger, operation string) {
	if closer == nil {
		return
	}

	if err := closer.Close(); err != nil {
		LogError(logger, "failed to close resource", err,
			slog.String("operation", operation),
			slog.String("component", "resource_management"))
	}
}

// SafeRollbackWithLogging rolls back a transaction and logs any errors that occur.
// A transaction that was already committed is not an error; that is the
// normal outcome of a deferred rollback.
func SafeRollbackWithLogging(tx interface{ Rollback() error }, logger *slog.Logger, operation string) {
	if tx == nil {
		return
	}

	if err := tx.Rollback(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return
		}
		LogError(logger, "failed to rollback transaction", err,
			slog.String("operation", operation),
			slog.String("component", "database"))
	}
}

// JoinDeferredError runs a cleanup from a defer statement. A cleanup
// failure is logged and joined onto *errp, so a query error and a failed
// rows.Close are both returned to the caller.
func JoinDeferredError(errp *error, cleanup func() error, logger *slog.Logger, operation string) {
	if cleanup == nil || errp == nil {
		return
	}
	cerr := cleanup()
	if cerr == nil {
		return
	}
	LogError(logger, "deferred cleanup failed", cerr,
		slog.String("operation", operation),
		slog.String("component", "deferred_cleanup"))
	*errp = errors.Join(*errp, fmt.Errorf("%s: %w", operation, cerr))
}
