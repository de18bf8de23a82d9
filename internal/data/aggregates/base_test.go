package aggregates

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

var testActor = auth.Actor{ID: uuid.New(), Role: auth.RoleBidang, BidangID: uuid.New()}

func TestExecuteScopedObservesSuccessStatus(t *testing.T) {
	hooks := &spyHooks{}
	runner := &spyTxRunner{}

	var seen *dbctx.Scope
	err := executeScoped(context.Background(), BaseDeps{
		Runner: runner,
		Hooks:  hooks,
	}, "aggregate.test.success", testActor, "upload", func(dbc dbctx.Context) error {
		seen = dbc.Scope
		return nil
	})
	if err != nil {
		t.Fatalf("executeScoped success: %v", err)
	}
	if len(hooks.Operations) != 1 || hooks.Operations[0].Status != "success" {
		t.Fatalf("operations: %+v", hooks.Operations)
	}
	if seen == nil || seen.UserID != testActor.ID.String() || seen.Role != "BIDANG" || seen.Reason != "upload" {
		t.Fatalf("scope: got=%+v", seen)
	}
	if seen.UnitID != testActor.BidangID.String() {
		t.Fatalf("scope unit: want=%s got=%s", testActor.BidangID, seen.UnitID)
	}
}

func TestExecuteScopedMissingContextNeverOpensTx(t *testing.T) {
	cases := []auth.Actor{
		{},
		{ID: uuid.New()},
		{Role: auth.RoleKabid},
	}
	for _, actor := range cases {
		hooks := &spyHooks{}
		runner := &spyTxRunner{}
		called := false
		err := executeScoped(context.Background(), BaseDeps{Runner: runner, Hooks: hooks}, "aggregate.test.ctx", actor, "", func(_ dbctx.Context) error {
			called = true
			return nil
		})
		if !domainagg.IsCode(err, domainagg.CodeMissingContext) {
			t.Fatalf("actor %+v: want missing_context got=%v", actor, err)
		}
		if called || runner.calls != 0 {
			t.Fatalf("actor %+v: transaction opened (calls=%d)", actor, runner.calls)
		}
		if hooks.Operations[0].Status != string(domainagg.CodeMissingContext) {
			t.Fatalf("status: got=%s", hooks.Operations[0].Status)
		}
	}
}

func TestExecuteScopedUnitDefaultsToZero(t *testing.T) {
	var seen *dbctx.Scope
	actor := auth.Actor{ID: uuid.New(), Role: auth.RolePusdatin}
	err := executeScoped(context.Background(), BaseDeps{Runner: &spyTxRunner{}}, "aggregate.test.unit", actor, "", func(dbc dbctx.Context) error {
		seen = dbc.Scope
		return nil
	})
	if err != nil {
		t.Fatalf("executeScoped: %v", err)
	}
	if seen.Unit() != "0" {
		t.Fatalf("unit: want=0 got=%s", seen.Unit())
	}
}

func TestExecuteScopedTracksConflictAndRetryCounters(t *testing.T) {
	t.Run("conflict", func(t *testing.T) {
		hooks := &spyHooks{}
		err := executeScoped(context.Background(), BaseDeps{
			Runner: &spyTxRunner{},
			Hooks:  hooks,
		}, "aggregate.test.conflict", testActor, "", func(_ dbctx.Context) error {
			return &pgconn.PgError{Code: "23505"}
		})
		if !domainagg.IsCode(err, domainagg.CodeDuplicateConflict) {
			t.Fatalf("expected duplicate_conflict code, got=%v", err)
		}
		if len(hooks.Conflicts) != 1 || hooks.Conflicts[0] != "aggregate.test.conflict" {
			t.Fatalf("conflict hooks: %+v", hooks.Conflicts)
		}
		if len(hooks.Retries) != 0 {
			t.Fatalf("retry hooks should be empty, got=%+v", hooks.Retries)
		}
	})

	t.Run("retryable", func(t *testing.T) {
		hooks := &spyHooks{}
		err := executeScoped(context.Background(), BaseDeps{
			Runner: &spyTxRunner{},
			Hooks:  hooks,
		}, "aggregate.test.retry", testActor, "", func(_ dbctx.Context) error {
			return &pgconn.PgError{Code: "55P03"}
		})
		if !domainagg.IsCode(err, domainagg.CodeRetryable) {
			t.Fatalf("expected retryable code, got=%v", err)
		}
		if len(hooks.Retries) != 1 || hooks.Retries[0] != "aggregate.test.retry" {
			t.Fatalf("retry hooks: %+v", hooks.Retries)
		}
		if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeRetryable) {
			t.Fatalf("unexpected op status: %+v", hooks.Operations)
		}
	})
}

func TestAggregateErrorStatus(t *testing.T) {
	if got := aggregateErrorStatus(nil); got != "success" {
		t.Fatalf("nil status: want=success got=%s", got)
	}
	if got := aggregateErrorStatus(ValidationError("x")); got != string(domainagg.CodeValidation) {
		t.Fatalf("validation status: got=%s", got)
	}
	if got := aggregateErrorStatus(gorm.ErrDuplicatedKey); got != string(domainagg.CodeDuplicateConflict) {
		t.Fatalf("conflict status: got=%s", got)
	}
	if got := aggregateErrorStatus(context.DeadlineExceeded); got != string(domainagg.CodeRetryable) {
		t.Fatalf("deadline status: got=%s", got)
	}
}

type spyTxRunner struct {
	calls int
}

func (r *spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.calls++
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.Conflicts = append(h.Conflicts, name)
}

func (h *spyHooks) IncRetry(name string) {
	h.Retries = append(h.Retries, name)
}
