package logging

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// SafeCloseWithLogging closes closer and logs a failure instead of returning it.
// Used for deferred closes of response bodies and database handles.
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

// SafeRollbackWithLogging rolls back tx and logs a failure. A rollback after a
// successful commit is expected from deferred calls and is not logged.
func SafeRollbackWithLogging(tx interface{ Rollback() error }, logger *slog.Logger, operation string) {
	if tx == nil {
		return
	}

	err := tx.Rollback()
	if err == nil || errors.Is(err, sql.ErrTxDone) {
		return
	}

	LogError(logger, "failed to rollback transaction", err,
		slog.String("operation", operation),
		slog.String("component", "database"))
}

// HandleDeferredError runs deferredOp and, if it fails while the surrounding
// function succeeded, replaces *originalErr with the wrapped failure. An
// existing error always takes precedence.
func HandleDeferredError(originalErr *error, deferredOp func() error, logger *slog.Logger, operation string) {
	if deferredOp == nil {
		return
	}

	err := deferredOp()
	if err == nil {
		return
	}

	LogError(logger, "deferred operation failed", err,
		slog.String("operation", operation),
		slog.String("component", "deferred_cleanup"))

	if *originalErr == nil {
		*originalErr = fmt.Errorf("%s failed: %w", operation, err)
	}
}
