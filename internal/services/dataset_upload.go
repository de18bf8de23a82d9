package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/observability"
	"github.com/pusdatin/satudata-backend/internal/platform/filestore"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

// DatasetKeyPrefix is the storage namespace of dataset uploads.
const DatasetKeyPrefix = "datasets/"

type UploadedFileInfo struct {
	OriginalName string
	MimeType     string
	SizeBytes    int64
	Reader       io.Reader
}

type DatasetUploadService interface {
	Upload(ctx context.Context, actor auth.Actor, datasetID uuid.UUID, file UploadedFileInfo) (domainagg.IngestResult, error)
}

type DatasetUploadConfig struct {
	// TempDir holds spooled uploads; empty means os.TempDir().
	TempDir  string
	MaxBytes int64
}

type datasetUploadService struct {
	log     *logger.Logger
	store   filestore.Store
	ingest  domainagg.DatasetIngestAggregate
	metrics *observability.Metrics
	events  DatasetEventEmitter
	cfg     DatasetUploadConfig
	now     func() time.Time
}

func NewDatasetUploadService(
	baseLog *logger.Logger,
	store filestore.Store,
	ingest domainagg.DatasetIngestAggregate,
	metrics *observability.Metrics,
	events DatasetEventEmitter,
	cfg DatasetUploadConfig,
) DatasetUploadService {
	return &datasetUploadService{
		log:     baseLog.With("service", "DatasetUploadService"),
		store:   store,
		ingest:  ingest,
		metrics: metrics,
		events:  emitterOrNoop(events),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Upload spools the body to a temp file, writes the durable object, then
// ingests it. The durable object is deleted again when ingestion fails.
func (s *datasetUploadService) Upload(ctx context.Context, actor auth.Actor, datasetID uuid.UUID, file UploadedFileInfo) (out domainagg.IngestResult, err error) {
	const op = "Datasets.Upload"
	ctx, span := observability.StartSpan(ctx, "DatasetUploadService.Upload",
		attribute.String("dataset_id", datasetID.String()),
		attribute.String("file.name", file.OriginalName),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(domainagg.CodeOf(err)))
		}
		span.End()
	}()

	name := strings.TrimSpace(file.OriginalName)
	if name == "" || file.Reader == nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "a file with a name is required", nil)
	}

	spooled, size, err := s.spool(file.Reader)
	if err != nil {
		return out, err
	}
	defer func() { _ = os.Remove(spooled) }()

	key := StorageKey(datasetID, s.now(), name)
	obj, err := s.save(ctx, key, spooled)
	if err != nil {
		s.metrics.IncStorageError("save")
		return out, fmt.Errorf("store upload %s: %w", key, err)
	}

	out, err = s.ingest.Ingest(ctx, domainagg.IngestInput{
		Actor:     actor,
		Reason:    "upload " + name,
		DatasetID: datasetID,
		File: domainagg.IngestFile{
			OriginalName: name,
			StorageKey:   obj.Key,
			StoredPath:   obj.Location,
			LocalPath:    spooled,
			MimeType:     strings.TrimSpace(file.MimeType),
			SizeBytes:    size,
		},
	})
	if err != nil {
		s.compensate(ctx, obj.Key, err)
		return out, err
	}

	s.metrics.ObserveIngest(out.Records.Inserted, out.Records.Deleted, size)
	s.log.Info("dataset upload ingested",
		"dataset_id", datasetID,
		"actor_id", actor.ID,
		"storage_key", obj.Key,
		"version", out.File.Version,
		"inserted", out.Records.Inserted,
		"deleted", out.Records.Deleted,
	)
	s.events.Emit(ctx, fileIngestedMessage(out, actor.ID.String()))
	return out, nil
}

func (s *datasetUploadService) spool(r io.Reader) (string, int64, error) {
	f, err := os.CreateTemp(s.cfg.TempDir, "satudata-upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("spool upload: %w", err)
	}
	src := r
	if s.cfg.MaxBytes > 0 {
		src = io.LimitReader(r, s.cfg.MaxBytes+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(f.Name())
		if copyErr == nil {
			copyErr = closeErr
		}
		return "", 0, fmt.Errorf("spool upload: %w", copyErr)
	}
	if s.cfg.MaxBytes > 0 && n > s.cfg.MaxBytes {
		_ = os.Remove(f.Name())
		return "", 0, domainagg.NewError(domainagg.CodeValidation, "Datasets.Upload",
			fmt.Sprintf("file exceeds the %d byte upload limit", s.cfg.MaxBytes), nil)
	}
	return f.Name(), n, nil
}

func (s *datasetUploadService) save(ctx context.Context, key, path string) (filestore.Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return filestore.Object{}, err
	}
	defer f.Close()
	return s.store.Save(ctx, key, f)
}

// compensate removes an object whose ingestion failed. A failure here leaves
// an orphan for the sweeper.
func (s *datasetUploadService) compensate(ctx context.Context, key string, cause error) {
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := s.store.Delete(delCtx, key); err != nil {
		s.metrics.IncStorageError("compensate")
		s.log.Warn("upload compensation failed; object left for sweep-orphans",
			"storage_key", key, "error", err, "cause", cause)
		return
	}
	s.log.Info("upload rejected; stored object removed",
		"storage_key", key, "code", string(domainagg.CodeOf(cause)))
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// StorageKey builds datasets/<id>/<unix-ms>-<nonce>-<sanitised-name>. The
// nonce keeps same-millisecond uploads of one name on distinct objects.
func StorageKey(datasetID uuid.UUID, at time.Time, originalName string) string {
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s%s/%d-%s-%s", DatasetKeyPrefix, datasetID, at.UnixMilli(), nonce, SanitizeFileName(originalName))
}

func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = unsafeNameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if len(name) > 120 {
		name = name[len(name)-120:]
	}
	if name == "" {
		return "upload"
	}
	return name
}
