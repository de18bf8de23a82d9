package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/pusdatin/satudata-backend/internal/domain"
	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/domain/datasets"
	"gorm.io/gorm"
)

func SeedBidang(tb testing.TB, ctx context.Context, tx *gorm.DB, code string) *types.Bidang {
	tb.Helper()
	b := &types.Bidang{
		ID:   uuid.New(),
		Code: fmt.Sprintf("%s-%s", code, uuid.NewString()[:8]),
		Name: "Bidang " + code,
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed bidang: %v", err)
	}
	return b
}

// SeedDataset creates a dataset in status with the given columns (already normalized).
func SeedDataset(tb testing.TB, ctx context.Context, tx *gorm.DB, bidangID uuid.UUID, kind datasets.Kind, status datasets.Status, columns ...string) *types.Dataset {
	tb.Helper()
	d := &types.Dataset{
		ID:       uuid.New(),
		BidangID: bidangID,
		Kind:     kind,
		Status:   status,
		Name:     "Dataset " + uuid.NewString()[:8],
		Source:   "BPS",
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed dataset: %v", err)
	}
	for i, name := range columns {
		col := &types.DatasetColumn{DatasetID: d.ID, Name: name, OrderIndex: i + 1}
		if err := tx.WithContext(ctx).Create(col).Error; err != nil {
			tb.Fatalf("seed dataset column: %v", err)
		}
	}
	return d
}

func SeedDatasetFile(tb testing.TB, ctx context.Context, tx *gorm.DB, datasetID uuid.UUID, version int, active bool) *types.DatasetFile {
	tb.Helper()
	f := &types.DatasetFile{
		ID:           uuid.New(),
		DatasetID:    datasetID,
		OriginalName: fmt.Sprintf("v%d.csv", version),
		StorageKey:   fmt.Sprintf("datasets/%s/%d-v%d.csv", datasetID, time.Now().UnixMilli(), version),
		Version:      version,
		IsActive:     active,
		UploadedAt:   time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed dataset file: %v", err)
	}
	return f
}

func SeedRecords(tb testing.TB, ctx context.Context, tx *gorm.DB, datasetID, fileID uuid.UUID, n int) {
	tb.Helper()
	for i := 0; i < n; i++ {
		rec := &types.DatasetRecord{
			DatasetID: datasetID,
			FileID:    fileID,
			RowIndex:  i,
			Data:      datasets.RowData(map[string]string{"ROW": fmt.Sprint(i)}),
		}
		if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
			tb.Fatalf("seed record: %v", err)
		}
	}
}

// Actor builds an actor of role belonging to bidangID.
func Actor(role auth.Role, bidangID uuid.UUID) auth.Actor {
	return auth.Actor{ID: uuid.New(), Role: role, BidangID: bidangID}
}
