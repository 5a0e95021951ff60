// Package service holds what the domain services share: the translation of
// store failures into application errors.
package service

import (
	"context"
	"database/sql/driver"
	"errors"

	"github.com/Additional-Code/planta/internal/database"
	"github.com/Additional-Code/planta/pkg/errorbank"
)

// StoreError converts a repository error into an AppError. Constraint
// violations become conflicts; connectivity problems become unavailable;
// everything else is internal. message is what the client sees.
func StoreError(err error, message string) *errorbank.AppError {
	if err == nil {
		return nil
	}
	var appErr *errorbank.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, database.ErrForeignKey):
		return errorbank.Conflict(message+": referenced row missing or still in use", errorbank.WithCause(err))
	case errors.Is(err, database.ErrDuplicate):
		return errorbank.Conflict(message+": duplicate entry", errorbank.WithCause(err))
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded):
		return errorbank.Unavailable(message+": database unavailable", errorbank.WithCause(err))
	default:
		return errorbank.Internal(message, errorbank.WithCause(err))
	}
}
