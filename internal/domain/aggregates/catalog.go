package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/domain/datasets"
)

var DatasetCatalogAggregateContract = Contract{
	Name:             "Datasets.CatalogAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Lock:             LockDatasetRow,
	ActorScoped:      true,
	Notes:            "Owns dataset creation with its fixed column set and metadata edits while in DRAFT.",
}

// DatasetCatalogAggregate owns dataset creation and draft metadata edits.
type DatasetCatalogAggregate interface {
	Aggregate

	Create(ctx context.Context, in CreateDatasetInput) (*datasets.Dataset, error)
	Update(ctx context.Context, in UpdateDatasetInput) (*datasets.Dataset, error)
}

// DatasetMetadata holds the descriptive fields of a dataset.
type DatasetMetadata struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	AccessLevel datasets.AccessLevel `json:"access_level"`
	Category    string               `json:"category"`
	Periodicity string               `json:"periodicity"`
	Contact     string               `json:"contact"`
	Topic       string               `json:"topic"`
	Source      string               `json:"source"`
	Size        string               `json:"size"`
	Unit        string               `json:"unit"`
}

type ColumnSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateDatasetInput struct {
	Actor    auth.Actor
	Kind     datasets.Kind
	Metadata DatasetMetadata
	Columns  []ColumnSpec
}

// MetadataPatch updates only the non-nil fields.
type MetadataPatch struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	AccessLevel *datasets.AccessLevel `json:"access_level"`
	Category    *string               `json:"category"`
	Periodicity *string               `json:"periodicity"`
	Contact     *string               `json:"contact"`
	Topic       *string               `json:"topic"`
	Source      *string               `json:"source"`
	Size        *string               `json:"size"`
	Unit        *string               `json:"unit"`
}

type UpdateDatasetInput struct {
	Actor     auth.Actor
	DatasetID uuid.UUID
	Patch     MetadataPatch
}
