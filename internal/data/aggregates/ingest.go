package aggregates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pusdatin/satudata-backend/internal/data/repos"
	types "github.com/pusdatin/satudata-backend/internal/domain"
	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/domain/datasets"
	"github.com/pusdatin/satudata-backend/internal/ingestion/tabular"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
)

type DatasetIngestAggregateDeps struct {
	Base BaseDeps

	Datasets repos.DatasetRepo
	Columns  repos.DatasetColumnRepo
	Files    repos.DatasetFileRepo
	Records  repos.DatasetRecordRepo

	// Parsers resolves a parser by file extension; defaults to tabular.ForExtension.
	Parsers   func(ext string) (tabular.Parser, error)
	BatchSize int
}

type datasetIngestAggregate struct {
	deps   DatasetIngestAggregateDeps
	schema SchemaRegistry
}

func NewDatasetIngestAggregate(deps DatasetIngestAggregateDeps) domainagg.DatasetIngestAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Parsers == nil {
		deps.Parsers = tabular.ForExtension
	}
	return &datasetIngestAggregate{deps: deps, schema: SchemaRegistry{Columns: deps.Columns}}
}

func (a *datasetIngestAggregate) Contract() domainagg.Contract {
	return domainagg.DatasetIngestAggregateContract
}

// Ingest stores an uploaded file as the dataset's new active version and, for
// structured datasets, replaces the whole record set with the parsed rows.
// Preconditions are read in a short transaction and the file is parsed before
// the write transaction opens; nothing is mutated unless every check passes.
func (a *datasetIngestAggregate) Ingest(ctx context.Context, in domainagg.IngestInput) (domainagg.IngestResult, error) {
	const op = "Datasets.Ingest"
	var out domainagg.IngestResult

	if !in.Actor.Complete() {
		return out, executeScoped(ctx, a.deps.Base, op, in.Actor, in.Reason, nil)
	}
	if in.DatasetID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing dataset_id", nil)
	}
	if strings.TrimSpace(in.File.OriginalName) == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing original file name", nil)
	}
	if a.deps.Datasets == nil || a.deps.Columns == nil || a.deps.Files == nil || a.deps.Records == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "ingest aggregate repos not configured", nil)
	}

	ext := tabular.Extension(in.File.OriginalName)
	var (
		kind     datasets.Kind
		expected []string
		parser   tabular.Parser
	)
	err := executeScoped(ctx, a.deps.Base, op+".Precheck", in.Actor, in.Reason, func(dbc dbctx.Context) error {
		d, err := a.deps.Datasets.GetByID(dbc, in.DatasetID)
		if err != nil {
			return err
		}
		if d == nil {
			return datasetNotFound(op, in.DatasetID)
		}
		if err := RequireDraft(op, d); err != nil {
			return err
		}
		if err := requireUploader(op, in.Actor, d); err != nil {
			return err
		}
		kind = d.Kind
		if kind != datasets.KindStructured {
			return nil
		}
		parser, err = a.deps.Parsers(ext)
		if err != nil {
			return domainagg.NewError(domainagg.CodeUnsupportedFormat, op,
				fmt.Sprintf("unsupported file format %q; structured uploads accept .csv or .xlsx", ext), err)
		}
		expected, err = a.schema.ExpectedColumns(dbc, d.ID)
		return err
	})
	if err != nil {
		return out, err
	}

	diag := domainagg.IngestDiagnostics{Extension: ext}
	var table *tabular.Table
	if kind == datasets.KindStructured {
		parseStart := time.Now()
		table, err = parser.Parse(in.File.LocalPath)
		if err != nil {
			return out, a.rejected(op, parseStart, domainagg.NewError(domainagg.CodeUnreadableFile, op, "file could not be read as "+ext, err))
		}
		if err := tabular.ValidateHeaders(table.Headers, expected); err != nil {
			return out, a.rejected(op, parseStart, headerMismatch(op, err))
		}
		if table.Delimiter != 0 {
			diag.Delimiter = string(table.Delimiter)
		}
		diag.RowCount = len(table.Rows)
	}

	err = executeScoped(ctx, a.deps.Base, op, in.Actor, in.Reason, func(dbc dbctx.Context) error {
		d, err := a.deps.Datasets.LockByID(dbc, in.DatasetID)
		if err != nil {
			return err
		}
		if d == nil {
			return datasetNotFound(op, in.DatasetID)
		}
		if err := RequireDraft(op, d); err != nil {
			return err
		}

		maxVersion, err := a.deps.Files.GetMaxVersion(dbc, d.ID)
		if err != nil {
			return err
		}
		// Deactivate before insert: the one-active-file index is checked per statement.
		if _, err := a.deps.Files.DeactivateOthers(dbc, d.ID, uuid.Nil); err != nil {
			return err
		}
		file := &types.DatasetFile{
			DatasetID:    d.ID,
			OriginalName: in.File.OriginalName,
			StorageKey:   in.File.StorageKey,
			StoredPath:   in.File.StoredPath,
			MimeType:     in.File.MimeType,
			SizeBytes:    in.File.SizeBytes,
			Version:      maxVersion + 1,
			IsActive:     true,
			UploadedBy:   in.Actor.ID,
			UploadedAt:   a.deps.Base.Now(),
		}
		if err := a.deps.Files.Create(dbc, file); err != nil {
			return err
		}

		counts := domainagg.RecordCounts{}
		if d.Kind == datasets.KindStructured {
			counts.Deleted, err = a.deps.Records.DeleteByDatasetID(dbc, d.ID)
			if err != nil {
				return err
			}
			rows := make([]*types.DatasetRecord, 0, len(table.Rows))
			for i, row := range table.Rows {
				rows = append(rows, &types.DatasetRecord{
					DatasetID: d.ID,
					FileID:    file.ID,
					RowIndex:  i,
					Data:      datasets.RowData(tabular.ProjectRow(table.Headers, row)),
				})
			}
			counts.Inserted, err = a.deps.Records.CreateInBatches(dbc, rows, a.deps.BatchSize)
			if err != nil {
				return err
			}
		}

		out = domainagg.IngestResult{
			DatasetID:   d.ID,
			BidangID:    d.BidangID,
			Kind:        d.Kind,
			File:        file,
			Records:     counts,
			Diagnostics: diag,
		}
		return nil
	})
	return out, err
}

// rejected reports a failure raised outside any transaction to the hooks.
func (a *datasetIngestAggregate) rejected(op string, start time.Time, err error) error {
	a.deps.Base.Hooks.ObserveOperation(op, aggregateErrorStatus(err), time.Since(start))
	return err
}

func requireUploader(op string, actor auth.Actor, d *datasets.Dataset) error {
	if actor.Role == auth.RoleBidang && actor.InUnit(d.BidangID) {
		return nil
	}
	return forbidden(op, "only the owning unit may upload to this dataset")
}

func headerMismatch(op string, err error) error {
	var mismatch *tabular.HeaderMismatchError
	if !errors.As(err, &mismatch) {
		return domainagg.NewError(domainagg.CodeHeaderMismatch, op, err.Error(), err)
	}
	return &domainagg.Error{
		Code:    domainagg.CodeHeaderMismatch,
		Op:      op,
		Message: mismatch.Error(),
		Cause:   err,
		Meta: map[string]any{
			"missing":  mismatch.Missing,
			"expected": mismatch.Expected,
			"received": mismatch.Received,
		},
	}
}
