package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/pusdatin/satudata-backend/internal/data/aggregates"
	"github.com/pusdatin/satudata-backend/internal/data/repos"
	"github.com/pusdatin/satudata-backend/internal/data/repos/testutil"
	types "github.com/pusdatin/satudata-backend/internal/domain"
	"github.com/pusdatin/satudata-backend/internal/observability"
	"github.com/pusdatin/satudata-backend/internal/platform/filestore"
	"github.com/pusdatin/satudata-backend/internal/realtime"
	"gorm.io/gorm"
)

type fixture struct {
	ctx     context.Context
	db      *gorm.DB
	store   *filestore.LocalStore
	metrics *observability.Metrics

	files   repos.DatasetFileRepo
	records repos.DatasetRecordRepo

	datasets DatasetService
	uploads  DatasetUploadService
	sweeper  OrphanSweeper

	// listener receives every unit's events.
	listener *realtime.Client

	bidang *types.Bidang
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	store, err := filestore.NewLocalStore(log, t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	metrics := observability.New()
	hub := realtime.NewHub(log, metrics)
	emitter := &HubEmitter{Hub: hub, Metrics: metrics}

	datasetRepo := repos.NewDatasetRepo(db, log)
	columns := repos.NewDatasetColumnRepo(db, log)
	files := repos.NewDatasetFileRepo(db, log)
	records := repos.NewDatasetRecordRepo(db, log)
	reviews := repos.NewDatasetReviewRepo(db, log)

	base := aggregates.BaseDeps{DB: db, Log: log, Hooks: aggregates.NewObservabilityHooks(metrics)}
	lifecycle := aggregates.NewDatasetLifecycleAggregate(aggregates.DatasetLifecycleAggregateDeps{
		Base:     base,
		Datasets: datasetRepo,
		Reviews:  reviews,
	})
	ingest := aggregates.NewDatasetIngestAggregate(aggregates.DatasetIngestAggregateDeps{
		Base:     base,
		Datasets: datasetRepo,
		Columns:  columns,
		Files:    files,
		Records:  records,
	})
	catalog := aggregates.NewDatasetCatalogAggregate(aggregates.DatasetCatalogAggregateDeps{
		Base:     base,
		Datasets: datasetRepo,
		Columns:  columns,
	})

	f := &fixture{
		ctx:     context.Background(),
		db:      db,
		store:   store,
		metrics: metrics,
		files:   files,
		records: records,
	}
	f.datasets = NewDatasetService(log, DatasetServiceDeps{
		Datasets:  datasetRepo,
		Columns:   columns,
		Files:     files,
		Records:   records,
		Reviews:   reviews,
		Catalog:   catalog,
		Lifecycle: lifecycle,
		Queues:    lifecycle,
		Events:    emitter,
	})
	f.uploads = NewDatasetUploadService(log, store, ingest, metrics, emitter, DatasetUploadConfig{TempDir: t.TempDir(), MaxBytes: 1 << 20})
	f.sweeper = NewOrphanSweeper(log, store, files, metrics)
	f.listener = hub.NewClient(uuid.New())
	hub.AddChannel(f.listener, realtime.AllUnitsChannel)
	t.Cleanup(func() { hub.CloseClient(f.listener) })
	f.bidang = testutil.SeedBidang(t, f.ctx, db, "BID")
	return f
}
