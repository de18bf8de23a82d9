package aggregates

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pusdatin/satudata-backend/internal/data/repos"
	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
)

// SchemaRegistry is the read-only view of a dataset's declared columns.
type SchemaRegistry struct {
	Columns repos.DatasetColumnRepo
}

// ExpectedColumns returns the declared column names in order. A dataset with
// no declared columns fails with schema_empty.
func (s SchemaRegistry) ExpectedColumns(dbc dbctx.Context, datasetID uuid.UUID) ([]string, error) {
	const op = "Datasets.Schema.ExpectedColumns"
	cols, err := s.Columns.ListByDatasetID(dbc, datasetID)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, domainagg.NewError(domainagg.CodeSchemaEmpty, op, fmt.Sprintf("dataset %s declares no columns", datasetID), nil)
	}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.Name)
	}
	return out, nil
}
