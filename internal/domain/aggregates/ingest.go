package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/domain/datasets"
)

var DatasetIngestAggregateContract = Contract{
	Name:             "Datasets.IngestAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Lock:             LockDatasetRow,
	ActorScoped:      true,
	Notes: "Owns file version allocation, active-file switching and the all-or-nothing replacement " +
		"of a structured dataset's records. Parsing runs before the write transaction.",
}

// DatasetIngestAggregate owns the upload write boundary of a dataset.
//
// Write method failures return *aggregates.Error with codes:
// CodeMissingContext, CodeDatasetNotFound, CodeDatasetLocked, CodeForbidden, CodeUnsupportedFormat,
// CodeSchemaEmpty, CodeUnreadableFile, CodeHeaderMismatch, CodeDuplicateConflict, CodeRetryable, CodeInternal.
type DatasetIngestAggregate interface {
	Aggregate

	Ingest(ctx context.Context, in IngestInput) (IngestResult, error)
}

// IngestFile describes an already durably stored upload.
type IngestFile struct {
	OriginalName string
	// StorageKey is the key in the durable file store.
	StorageKey string
	StoredPath string
	// LocalPath is a readable local copy used for parsing.
	LocalPath string
	MimeType  string
	SizeBytes int64
}

type IngestInput struct {
	Actor     auth.Actor
	Reason    string
	DatasetID uuid.UUID
	File      IngestFile
}

type RecordCounts struct {
	Inserted int64 `json:"inserted"`
	Deleted  int64 `json:"deleted"`
}

type IngestDiagnostics struct {
	Extension string `json:"extension"`
	// Delimiter is empty for spreadsheets and unstructured uploads.
	Delimiter string `json:"delimiter,omitempty"`
	RowCount  int    `json:"row_count"`
}

type IngestResult struct {
	DatasetID   uuid.UUID             `json:"dataset_id"`
	BidangID    uuid.UUID             `json:"bidang_id"`
	Kind        datasets.Kind         `json:"kind"`
	File        *datasets.DatasetFile `json:"file"`
	Records     RecordCounts          `json:"records"`
	Diagnostics IngestDiagnostics     `json:"diagnostics"`
}
