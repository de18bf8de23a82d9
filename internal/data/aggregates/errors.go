package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

// ErrValidation indicates caller input validation failure.
var ErrValidation = errors.New("aggregate validation")

// ValidationError tags an error as validation failure.
func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// MapError maps infrastructure/domain failures into aggregate error codes.
// Infrastructure detail stays on Cause; the message exposed is generic.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return aggErr
	}
	switch {
	case errors.Is(err, ErrValidation):
		return domainagg.Wrap(domainagg.CodeValidation, op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.NewError(domainagg.CodeDatasetNotFound, op, "dataset not found", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domainagg.NewError(domainagg.CodeDuplicateConflict, op, "duplicate record", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domainagg.NewError(domainagg.CodeFKConflict, op, "referenced record does not exist", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.NewError(domainagg.CodeRetryable, op, "operation interrupted", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return domainagg.NewError(domainagg.CodeDuplicateConflict, op, "duplicate record", err) // unique_violation
		case "23503":
			return domainagg.NewError(domainagg.CodeFKConflict, op, "referenced record does not exist", err) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return domainagg.NewError(domainagg.CodeRetryable, op, "concurrent update, retry", err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "already exists"):
		return domainagg.NewError(domainagg.CodeDuplicateConflict, op, "duplicate record", err)
	case strings.Contains(msg, "foreign key constraint"):
		return domainagg.NewError(domainagg.CodeFKConflict, op, "referenced record does not exist", err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return domainagg.NewError(domainagg.CodeRetryable, op, "concurrent update, retry", err)
	default:
		return domainagg.NewError(domainagg.CodeInternal, op, "internal error", err)
	}
}
