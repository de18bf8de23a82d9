package app

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pusdatin/satudata-backend/internal/data/aggregates"
	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"github.com/pusdatin/satudata-backend/internal/observability"
	"github.com/pusdatin/satudata-backend/internal/platform/filestore"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
	"github.com/pusdatin/satudata-backend/internal/realtime"
	"github.com/pusdatin/satudata-backend/internal/realtime/bus"
	"github.com/pusdatin/satudata-backend/internal/services"
)

type Aggregates struct {
	Lifecycle aggregates.DatasetLifecycleAggregate
	Ingest    domainagg.DatasetIngestAggregate
	Catalog   domainagg.DatasetCatalogAggregate
}

// Realtime fans dataset events out to stream clients. With redis configured
// events travel through the bus so every replica's hub sees them.
type Realtime struct {
	Hub     *realtime.Hub
	Bus     bus.Bus
	Emitter services.DatasetEventEmitter
}

type Services struct {
	Datasets services.DatasetService
	Uploads  services.DatasetUploadService
	Orphans  services.OrphanSweeper
}

func wireAggregates(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, metrics *observability.Metrics) Aggregates {
	log.Info("Wiring aggregates...")
	hooks := aggregates.ChainHooks(
		aggregates.NewObservabilityHooks(metrics),
		aggregates.NewLogHooks(log, cfg.SlowOperationThreshold),
	)
	base := aggregates.BaseDeps{DB: db, Log: log, Hooks: hooks}
	return Aggregates{
		Lifecycle: aggregates.NewDatasetLifecycleAggregate(aggregates.DatasetLifecycleAggregateDeps{
			Base:     base,
			Datasets: r.Datasets,
			Reviews:  r.Reviews,
		}),
		Ingest: aggregates.NewDatasetIngestAggregate(aggregates.DatasetIngestAggregateDeps{
			Base:      base,
			Datasets:  r.Datasets,
			Columns:   r.Columns,
			Files:     r.Files,
			Records:   r.Records,
			BatchSize: cfg.IngestBatchSize,
		}),
		Catalog: aggregates.NewDatasetCatalogAggregate(aggregates.DatasetCatalogAggregateDeps{
			Base:     base,
			Datasets: r.Datasets,
			Columns:  r.Columns,
		}),
	}
}

func wireRealtime(log *logger.Logger, cfg Config, rdb redis.UniversalClient, metrics *observability.Metrics) Realtime {
	log.Info("Wiring realtime...")
	hub := realtime.NewHub(log, metrics)
	if cfg.EventsHeartbeat > 0 {
		hub.Heartbeat = cfg.EventsHeartbeat
	}
	rt := Realtime{Hub: hub, Emitter: &services.HubEmitter{Hub: hub, Metrics: metrics}}
	if rdb == nil {
		return rt
	}
	evBus, err := bus.NewRedisBus(log, rdb, cfg.EventsChannel)
	if err != nil {
		log.Warn("event bus disabled; events stay local to this replica", "error", err)
		return rt
	}
	rt.Bus = evBus
	rt.Emitter = &services.RedisEmitter{Bus: evBus, Log: log, Metrics: metrics}
	return rt
}

func wireServices(log *logger.Logger, cfg Config, r Repos, aggs Aggregates, store filestore.Store, metrics *observability.Metrics, events services.DatasetEventEmitter) Services {
	log.Info("Wiring services...")
	return Services{
		Datasets: services.NewDatasetService(log, services.DatasetServiceDeps{
			Datasets:  r.Datasets,
			Columns:   r.Columns,
			Files:     r.Files,
			Records:   r.Records,
			Reviews:   r.Reviews,
			Catalog:   aggs.Catalog,
			Lifecycle: aggs.Lifecycle,
			Queues:    aggs.Lifecycle,
			Events:    events,
		}),
		Uploads: services.NewDatasetUploadService(log, store, aggs.Ingest, metrics, events, services.DatasetUploadConfig{
			TempDir:  cfg.UploadTempDir,
			MaxBytes: cfg.MaxUploadBytes,
		}),
		Orphans: services.NewOrphanSweeper(log, store, r.Files, metrics),
	}
}
