package aggregates

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

func TestMapError_Codes(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want domainagg.ErrorCode
	}{
		{"validation", ValidationError("bad input"), domainagg.CodeValidation},
		{"not found", gorm.ErrRecordNotFound, domainagg.CodeDatasetNotFound},
		{"gorm duplicate", gorm.ErrDuplicatedKey, domainagg.CodeDuplicateConflict},
		{"unique violation", &pgconn.PgError{Code: "23505"}, domainagg.CodeDuplicateConflict},
		{"fk violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), domainagg.CodeFKConflict},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, domainagg.CodeRetryable},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, domainagg.CodeRetryable},
		{"sqlite unique", errors.New("UNIQUE constraint failed: dataset_file.dataset_id"), domainagg.CodeDuplicateConflict},
		{"sqlite fk", errors.New("FOREIGN KEY constraint failed"), domainagg.CodeFKConflict},
		{"other", errors.New("connection reset by peer"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		err := MapError("op", tc.in)
		if !domainagg.IsCode(err, tc.want) {
			t.Fatalf("%s: want=%s got=%q (%v)", tc.name, tc.want, domainagg.CodeOf(err), err)
		}
	}
}

func TestMapError_HidesInfrastructureDetail(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	err := MapError("op", cause)
	var aggErr *domainagg.Error
	if !errors.As(err, &aggErr) {
		t.Fatalf("expected aggregate error, got %T", err)
	}
	if aggErr.Message != "internal error" {
		t.Fatalf("message: want=%q got=%q", "internal error", aggErr.Message)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause should stay reachable")
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeHeaderMismatch, "op", "missing", nil)
	out := MapError("other", fmt.Errorf("wrapped: %w", in))
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}
