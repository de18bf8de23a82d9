package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pusdatin/satudata-backend/internal/data/repos"
	"github.com/pusdatin/satudata-backend/internal/observability"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
	"github.com/pusdatin/satudata-backend/internal/platform/filestore"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

type SweepOptions struct {
	// OlderThan skips objects updated more recently, so uploads still being
	// ingested are never touched.
	OlderThan time.Duration
	DryRun    bool
}

type SweepReport struct {
	Scanned    int      `json:"scanned"`
	Referenced int      `json:"referenced"`
	TooRecent  int      `json:"too_recent"`
	Deleted    []string `json:"deleted"`
	Failed     []string `json:"failed"`
}

// OrphanSweeper removes stored uploads that no dataset file row references.
type OrphanSweeper interface {
	Sweep(ctx context.Context, opts SweepOptions) (SweepReport, error)
}

type orphanSweeper struct {
	log     *logger.Logger
	store   filestore.Store
	files   repos.DatasetFileRepo
	metrics *observability.Metrics
	now     func() time.Time
}

func NewOrphanSweeper(baseLog *logger.Logger, store filestore.Store, files repos.DatasetFileRepo, metrics *observability.Metrics) OrphanSweeper {
	return &orphanSweeper{
		log:     baseLog.With("service", "OrphanSweeper"),
		store:   store,
		files:   files,
		metrics: metrics,
		now:     time.Now,
	}
}

const sweepBatch = 500

func (s *orphanSweeper) Sweep(ctx context.Context, opts SweepOptions) (SweepReport, error) {
	report := SweepReport{Deleted: []string{}, Failed: []string{}}
	objects, err := s.store.List(ctx, DatasetKeyPrefix)
	if err != nil {
		return report, fmt.Errorf("list stored uploads: %w", err)
	}
	report.Scanned = len(objects)

	cutoff := s.now().Add(-opts.OlderThan)
	candidates := make([]string, 0, len(objects))
	for _, obj := range objects {
		if opts.OlderThan > 0 && obj.Updated.After(cutoff) {
			report.TooRecent++
			continue
		}
		candidates = append(candidates, obj.Key)
	}

	dbc := dbctx.Context{Ctx: ctx}
	for start := 0; start < len(candidates); start += sweepBatch {
		end := min(start+sweepBatch, len(candidates))
		batch := candidates[start:end]
		referenced, err := s.files.ReferencedStorageKeys(dbc, batch)
		if err != nil {
			return report, fmt.Errorf("check references: %w", err)
		}
		for _, key := range batch {
			if referenced[key] {
				report.Referenced++
				continue
			}
			if opts.DryRun {
				report.Deleted = append(report.Deleted, key)
				continue
			}
			if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, filestore.ErrNotFound) {
				s.log.Warn("orphan delete failed", "storage_key", key, "error", err)
				s.metrics.IncOrphan("failed")
				report.Failed = append(report.Failed, key)
				continue
			}
			s.metrics.IncOrphan("deleted")
			report.Deleted = append(report.Deleted, key)
		}
	}

	s.log.Info("orphan sweep finished",
		"scanned", report.Scanned,
		"referenced", report.Referenced,
		"too_recent", report.TooRecent,
		"deleted", len(report.Deleted),
		"failed", len(report.Failed),
		"dry_run", opts.DryRun,
	)
	return report, nil
}
