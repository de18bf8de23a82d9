package aggregates_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/pusdatin/satudata-backend/internal/data/aggregates"
	aggtest "github.com/pusdatin/satudata-backend/internal/data/aggregates/testutil"
	"github.com/pusdatin/satudata-backend/internal/data/repos"
	"github.com/pusdatin/satudata-backend/internal/data/repos/testutil"
	types "github.com/pusdatin/satudata-backend/internal/domain"
	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"github.com/pusdatin/satudata-backend/internal/domain/datasets"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

type harness struct {
	t     *testing.T
	ctx   context.Context
	db    *gorm.DB
	hooks *aggtest.HooksRecorder

	datasets repos.DatasetRepo
	columns  repos.DatasetColumnRepo
	files    repos.DatasetFileRepo
	records  repos.DatasetRecordRepo
	reviews  repos.DatasetReviewRepo

	lifecycle aggregates.DatasetLifecycleAggregate
	ingest    domainagg.DatasetIngestAggregate
	catalog   domainagg.DatasetCatalogAggregate

	bidang *types.Bidang
}

// newHarness wires every aggregate against a fresh database. runner may be nil.
func newHarness(t *testing.T, runner aggregates.TxRunner) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	h := &harness{
		t:        t,
		ctx:      context.Background(),
		db:       db,
		hooks:    &aggtest.HooksRecorder{},
		datasets: repos.NewDatasetRepo(db, log),
		columns:  repos.NewDatasetColumnRepo(db, log),
		files:    repos.NewDatasetFileRepo(db, log),
		records:  repos.NewDatasetRecordRepo(db, log),
		reviews:  repos.NewDatasetReviewRepo(db, log),
	}
	base := aggregates.BaseDeps{DB: db, Log: log, Runner: runner, Hooks: h.hooks}
	h.lifecycle = aggregates.NewDatasetLifecycleAggregate(aggregates.DatasetLifecycleAggregateDeps{
		Base:     base,
		Datasets: h.datasets,
		Reviews:  h.reviews,
	})
	h.ingest = aggregates.NewDatasetIngestAggregate(aggregates.DatasetIngestAggregateDeps{
		Base:      base,
		Datasets:  h.datasets,
		Columns:   h.columns,
		Files:     h.files,
		Records:   h.records,
		BatchSize: 2,
	})
	h.catalog = aggregates.NewDatasetCatalogAggregate(aggregates.DatasetCatalogAggregateDeps{
		Base:     base,
		Datasets: h.datasets,
		Columns:  h.columns,
	})
	h.bidang = testutil.SeedBidang(t, h.ctx, db, "BID")
	return h
}

func (h *harness) dbc() dbctx.Context {
	return dbctx.Context{Ctx: h.ctx}
}

func (h *harness) seed(kind datasets.Kind, status datasets.Status, columns ...string) *types.Dataset {
	h.t.Helper()
	return testutil.SeedDataset(h.t, h.ctx, h.db, h.bidang.ID, kind, status, columns...)
}

func (h *harness) reload(id uuid.UUID) *types.Dataset {
	h.t.Helper()
	d, err := h.datasets.GetByID(h.dbc(), id)
	if err != nil || d == nil {
		h.t.Fatalf("reload dataset %s: d=%v err=%v", id, d, err)
	}
	return d
}

func (h *harness) recordCount(id uuid.UUID) int64 {
	h.t.Helper()
	n, err := h.records.CountByDatasetID(h.dbc(), id)
	if err != nil {
		h.t.Fatalf("count records: %v", err)
	}
	return n
}

func (h *harness) fileCount(id uuid.UUID) int {
	h.t.Helper()
	files, err := h.files.ListByDatasetID(h.dbc(), id)
	if err != nil {
		h.t.Fatalf("list files: %v", err)
	}
	return len(files)
}

// upload writes content to a temp file named name and returns it as an ingest input.
func (h *harness) upload(d *types.Dataset, actorRole datasets.Role, name, content string) domainagg.IngestInput {
	h.t.Helper()
	path := filepath.Join(h.t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		h.t.Fatalf("write upload: %v", err)
	}
	return domainagg.IngestInput{
		Actor:     testutil.Actor(actorRole, d.BidangID),
		Reason:    "upload",
		DatasetID: d.ID,
		File: domainagg.IngestFile{
			OriginalName: name,
			StorageKey:   "datasets/" + d.ID.String() + "/" + name,
			StoredPath:   path,
			LocalPath:    path,
			MimeType:     "text/csv",
			SizeBytes:    int64(len(content)),
		},
	}
}

func wantCode(t *testing.T, err error, code domainagg.ErrorCode) {
	t.Helper()
	if !domainagg.IsCode(err, code) {
		t.Fatalf("error code: want=%s got=%s (err=%v)", code, domainagg.CodeOf(err), err)
	}
}
