package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pusdatin/satudata-backend/internal/data/repos"
	types "github.com/pusdatin/satudata-backend/internal/domain"
	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/domain/datasets"
	"github.com/pusdatin/satudata-backend/internal/ingestion/tabular"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

// DatasetDetail is a dataset with its declared columns and active file.
type DatasetDetail struct {
	Dataset    *types.Dataset         `json:"dataset"`
	Columns    []*types.DatasetColumn `json:"columns"`
	ActiveFile *types.DatasetFile     `json:"active_file"`
}

type RecordPage struct {
	Items    []*types.DatasetRecord `json:"items"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
}

type DatasetPage struct {
	Items    []*types.Dataset `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

type DatasetListInput struct {
	Actor    auth.Actor
	Status   datasets.Status
	BidangID uuid.UUID
	Search   string
	Page     int
	PageSize int
}

type DatasetService interface {
	Create(ctx context.Context, in domainagg.CreateDatasetInput) (*DatasetDetail, error)
	Update(ctx context.Context, in domainagg.UpdateDatasetInput) (*types.Dataset, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*DatasetDetail, error)
	List(ctx context.Context, in DatasetListInput) (DatasetPage, error)

	ListColumns(ctx context.Context, actor auth.Actor, id uuid.UUID) ([]*types.DatasetColumn, error)
	ListFiles(ctx context.Context, actor auth.Actor, id uuid.UUID) ([]*types.DatasetFile, error)
	ListRecords(ctx context.Context, actor auth.Actor, id uuid.UUID, page, pageSize int) (RecordPage, error)
	ListReviews(ctx context.Context, actor auth.Actor, id uuid.UUID) ([]*types.DatasetReview, error)

	// TemplateCSV renders the header-only CSV a submitter fills in.
	TemplateCSV(ctx context.Context, actor auth.Actor, id uuid.UUID) (string, []byte, error)

	Transition(ctx context.Context, op datasets.Operation, in domainagg.TransitionInput) (domainagg.TransitionResult, error)
	KabidQueue(ctx context.Context, in domainagg.QueueInput) (domainagg.QueuePage, error)
	PusdatinQueue(ctx context.Context, in domainagg.QueueInput) (domainagg.QueuePage, error)
}

type DatasetServiceDeps struct {
	Datasets repos.DatasetRepo
	Columns  repos.DatasetColumnRepo
	Files    repos.DatasetFileRepo
	Records  repos.DatasetRecordRepo
	Reviews  repos.DatasetReviewRepo

	Catalog   domainagg.DatasetCatalogAggregate
	Lifecycle domainagg.DatasetLifecycleAggregate
	Queues    domainagg.DatasetQueueReader

	// Events is optional.
	Events DatasetEventEmitter
}

type datasetService struct {
	log    *logger.Logger
	deps   DatasetServiceDeps
	events DatasetEventEmitter
}

func NewDatasetService(baseLog *logger.Logger, deps DatasetServiceDeps) DatasetService {
	return &datasetService{
		log:    baseLog.With("service", "DatasetService"),
		deps:   deps,
		events: emitterOrNoop(deps.Events),
	}
}

func (s *datasetService) Create(ctx context.Context, in domainagg.CreateDatasetInput) (*DatasetDetail, error) {
	d, err := s.deps.Catalog.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	cols, err := s.deps.Columns.ListByDatasetID(dbctx.Context{Ctx: ctx}, d.ID)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", d.ID, err)
	}
	s.log.Info("dataset created", "dataset_id", d.ID, "actor_id", in.Actor.ID, "kind", d.Kind, "columns", len(cols))
	return &DatasetDetail{Dataset: d, Columns: cols}, nil
}

func (s *datasetService) Update(ctx context.Context, in domainagg.UpdateDatasetInput) (*types.Dataset, error) {
	return s.deps.Catalog.Update(ctx, in)
}

func (s *datasetService) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*DatasetDetail, error) {
	const op = "Datasets.Get"
	dbc := dbctx.Context{Ctx: ctx}
	d, err := s.readable(dbc, op, actor, id)
	if err != nil {
		return nil, err
	}
	cols, err := s.deps.Columns.ListByDatasetID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", id, err)
	}
	active, err := s.deps.Files.GetActive(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("active file of %s: %w", id, err)
	}
	return &DatasetDetail{Dataset: d, Columns: cols, ActiveFile: active}, nil
}

// List returns datasets visible to the actor: PUSDATIN sees every unit,
// other roles only their own.
func (s *datasetService) List(ctx context.Context, in DatasetListInput) (DatasetPage, error) {
	const op = "Datasets.List"
	if !in.Actor.Complete() {
		return DatasetPage{}, missingActor(op)
	}
	page, size := domainagg.ClampPage(in.Page, in.PageSize)
	out := DatasetPage{Items: []*types.Dataset{}, Page: page, PageSize: size}

	filter := repos.DatasetListFilter{BidangID: in.BidangID, Search: in.Search}
	if in.Actor.Role != auth.RolePusdatin {
		if !in.Actor.HasUnit() {
			return out, domainagg.NewError(domainagg.CodeForbidden, op, "actor has no organizational unit", nil)
		}
		filter.BidangID = in.Actor.BidangID
	}
	if in.Status != "" {
		if !in.Status.Valid() {
			return out, domainagg.NewErrorWithMeta(domainagg.CodeValidation, op,
				fmt.Sprintf("unknown status %q", in.Status), map[string]any{"field": "status"})
		}
		filter.Statuses = []types.DatasetStatus{in.Status}
	}

	dbc := dbctx.Context{Ctx: ctx}
	total, err := s.deps.Datasets.Count(dbc, filter)
	if err != nil {
		return out, fmt.Errorf("count datasets: %w", err)
	}
	out.Total = total
	if total == 0 {
		return out, nil
	}
	items, err := s.deps.Datasets.List(dbc, filter, size, (page-1)*size)
	if err != nil {
		return out, fmt.Errorf("list datasets: %w", err)
	}
	out.Items = items
	return out, nil
}

func (s *datasetService) ListColumns(ctx context.Context, actor auth.Actor, id uuid.UUID) ([]*types.DatasetColumn, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.readable(dbc, "Datasets.ListColumns", actor, id); err != nil {
		return nil, err
	}
	return s.deps.Columns.ListByDatasetID(dbc, id)
}

func (s *datasetService) ListFiles(ctx context.Context, actor auth.Actor, id uuid.UUID) ([]*types.DatasetFile, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.readable(dbc, "Datasets.ListFiles", actor, id); err != nil {
		return nil, err
	}
	return s.deps.Files.ListByDatasetID(dbc, id)
}

// ListRecords pages the rows of the active file in input order.
func (s *datasetService) ListRecords(ctx context.Context, actor auth.Actor, id uuid.UUID, page, pageSize int) (RecordPage, error) {
	dbc := dbctx.Context{Ctx: ctx}
	page, size := domainagg.ClampPage(page, pageSize)
	out := RecordPage{Items: []*types.DatasetRecord{}, Page: page, PageSize: size}
	if _, err := s.readable(dbc, "Datasets.ListRecords", actor, id); err != nil {
		return out, err
	}
	total, err := s.deps.Records.CountByDatasetID(dbc, id)
	if err != nil {
		return out, fmt.Errorf("count records of %s: %w", id, err)
	}
	out.Total = total
	if total == 0 {
		return out, nil
	}
	items, err := s.deps.Records.ListByDatasetID(dbc, id, size, (page-1)*size)
	if err != nil {
		return out, fmt.Errorf("list records of %s: %w", id, err)
	}
	out.Items = items
	return out, nil
}

func (s *datasetService) ListReviews(ctx context.Context, actor auth.Actor, id uuid.UUID) ([]*types.DatasetReview, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.readable(dbc, "Datasets.ListReviews", actor, id); err != nil {
		return nil, err
	}
	return s.deps.Reviews.ListByDatasetID(dbc, id)
}

func (s *datasetService) TemplateCSV(ctx context.Context, actor auth.Actor, id uuid.UUID) (string, []byte, error) {
	const op = "Datasets.TemplateCSV"
	dbc := dbctx.Context{Ctx: ctx}
	d, err := s.readable(dbc, op, actor, id)
	if err != nil {
		return "", nil, err
	}
	body, err := RenderTemplate(ctx, s.deps.Columns, d)
	if err != nil {
		return "", nil, err
	}
	return TemplateFileName(d), body, nil
}

func (s *datasetService) Transition(ctx context.Context, op datasets.Operation, in domainagg.TransitionInput) (domainagg.TransitionResult, error) {
	res, err := s.deps.Lifecycle.Apply(ctx, op, in)
	if err != nil {
		return res, err
	}
	s.log.Info("dataset transition",
		"dataset_id", res.DatasetID,
		"actor_id", in.Actor.ID,
		"operation", res.Operation,
		"from", res.FromStatus,
		"to", res.ToStatus,
	)
	s.events.Emit(ctx, statusChangedMessage(res, in.Actor.ID.String()))
	return res, nil
}

func (s *datasetService) KabidQueue(ctx context.Context, in domainagg.QueueInput) (domainagg.QueuePage, error) {
	return s.deps.Queues.ListKabidQueue(ctx, in)
}

func (s *datasetService) PusdatinQueue(ctx context.Context, in domainagg.QueueInput) (domainagg.QueuePage, error) {
	return s.deps.Queues.ListPusdatinQueue(ctx, in)
}

// readable loads a dataset the actor may see.
func (s *datasetService) readable(dbc dbctx.Context, op string, actor auth.Actor, id uuid.UUID) (*types.Dataset, error) {
	if !actor.Complete() {
		return nil, missingActor(op)
	}
	d, err := s.deps.Datasets.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", id, err)
	}
	if d == nil {
		return nil, domainagg.NewError(domainagg.CodeDatasetNotFound, op, "dataset not found", nil)
	}
	if actor.Role != auth.RolePusdatin && !actor.InUnit(d.BidangID) {
		return nil, domainagg.NewError(domainagg.CodeForbidden, op, "dataset belongs to another unit", nil)
	}
	return d, nil
}

// RenderTemplate writes the expected columns of a structured dataset as a CSV header row.
func RenderTemplate(ctx context.Context, columns repos.DatasetColumnRepo, d *types.Dataset) ([]byte, error) {
	const op = "Datasets.TemplateCSV"
	if d.Kind != datasets.KindStructured {
		return nil, domainagg.NewErrorWithMeta(domainagg.CodeUnsupportedFormat, op,
			"templates exist only for structured datasets", map[string]any{"kind": string(d.Kind)})
	}
	cols, err := columns.ListByDatasetID(dbctx.Context{Ctx: ctx}, d.ID)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", d.ID, err)
	}
	if len(cols) == 0 {
		return nil, domainagg.NewError(domainagg.CodeSchemaEmpty, op, "dataset declares no columns", nil)
	}
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	var buf bytes.Buffer
	if err := tabular.WriteTemplate(&buf, names); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}

func TemplateFileName(d *types.Dataset) string {
	name := SanitizeFileName(d.Name)
	if name == "upload" {
		name = d.ID.String()
	}
	return "template-" + name + ".csv"
}

func missingActor(op string) error {
	return domainagg.NewError(domainagg.CodeMissingContext, op, "authenticated actor required", nil)
}
