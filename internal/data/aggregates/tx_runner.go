package aggregates

import (
	"context"

	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// TxRunner provides a shared transaction boundary primitive for aggregate writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

// NewGormTxRunner returns a transaction runner backed by GORM transactions.
func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

// ScopedTxRunner opens transactions tagged with the acting user so that row
// level security policies can read app.user_id, app.role, app.unit_id and
// app.reason through current_setting.
type ScopedTxRunner struct {
	runner TxRunner
}

func NewScopedTxRunner(runner TxRunner) *ScopedTxRunner {
	return &ScopedTxRunner{runner: runner}
}

// WithContext runs fn inside one tagged transaction. It fails with
// missing_context before opening anything when the actor has no id or role;
// any error from fn rolls the transaction back.
func (s *ScopedTxRunner) WithContext(ctx context.Context, actor auth.Actor, reason string, fn func(dbc dbctx.Context) error) error {
	if !actor.Complete() {
		return domainagg.NewError(domainagg.CodeMissingContext, "aggregate.scope", "actor id and role are required", nil)
	}
	scope := &dbctx.Scope{
		UserID: actor.ID.String(),
		Role:   string(actor.Role),
		UnitID: actor.UnitTag(),
		Reason: reason,
	}
	return s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		dbc.Scope = scope
		if err := applyScope(dbc, scope); err != nil {
			return err
		}
		if fn == nil {
			return nil
		}
		return fn(dbc)
	})
}

// applyScope sets transaction-local settings; a no-op outside Postgres.
func applyScope(dbc dbctx.Context, scope *dbctx.Scope) error {
	if dbc.Tx == nil || dbc.Tx.Dialector == nil || dbc.Tx.Dialector.Name() != "postgres" {
		return nil
	}
	return dbc.Tx.WithContext(dbc.Ctx).Exec(
		`SELECT set_config('app.user_id', ?, true), set_config('app.role', ?, true), set_config('app.unit_id', ?, true), set_config('app.reason', ?, true)`,
		scope.UserID, scope.Role, scope.Unit(), scope.Reason,
	).Error
}
