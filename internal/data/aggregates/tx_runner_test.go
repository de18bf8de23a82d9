package aggregates

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const setConfigSQL = `SELECT set_config\('app.user_id', \$1, true\), set_config\('app.role', \$2, true\), set_config\('app.unit_id', \$3, true\), set_config\('app.reason', \$4, true\)`

func mockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return db, mock
}

func TestScopedTxRunner_SetsSessionTagsOnPostgres(t *testing.T) {
	db, mock := mockPostgres(t)
	unit := uuid.New()
	actor := auth.Actor{ID: uuid.New(), Role: auth.RoleKabid, BidangID: unit}

	mock.ExpectBegin()
	mock.ExpectExec(setConfigSQL).
		WithArgs(actor.ID.String(), "KABID", unit.String(), "approve").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var seen *dbctx.Scope
	err := NewScopedTxRunner(NewGormTxRunner(db)).WithContext(context.Background(), actor, "approve", func(dbc dbctx.Context) error {
		seen = dbc.Scope
		return nil
	})
	if err != nil {
		t.Fatalf("WithContext: %v", err)
	}
	if seen == nil || seen.UnitID != unit.String() || seen.Reason != "approve" {
		t.Fatalf("scope: got=%+v", seen)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestScopedTxRunner_RollsBackOnError(t *testing.T) {
	db, mock := mockPostgres(t)
	actor := auth.Actor{ID: uuid.New(), Role: auth.RolePusdatin}

	mock.ExpectBegin()
	mock.ExpectExec(setConfigSQL).
		WithArgs(actor.ID.String(), "PUSDATIN", dbctx.UnassignedUnit, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := NewScopedTxRunner(NewGormTxRunner(db)).WithContext(context.Background(), actor, "", func(dbctx.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err: want=%v got=%v", boom, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
