package datasets

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func TestDatasetRepo_LockByIDIssuesForUpdate(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "dataset" WHERE id = \$1 AND "dataset"."deleted_at" IS NULL LIMIT .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "bidang_id", "kind", "status", "name"}).
			AddRow(id.String(), uuid.NewString(), "STRUCTURED", "DRAFT", "x"))

	repo := NewDatasetRepo(db, logger.Nop())
	got, err := repo.LockByID(dbctx.Context{Ctx: context.Background()}, id)
	if err != nil || got == nil || got.ID != id {
		t.Fatalf("LockByID: err=%v got=%v", err, got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
