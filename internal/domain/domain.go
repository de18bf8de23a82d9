package domain

import (
	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/domain/datasets"
	"github.com/pusdatin/satudata-backend/internal/domain/org"
)

type Bidang = org.Bidang

type Dataset = datasets.Dataset
type DatasetColumn = datasets.DatasetColumn
type DatasetFile = datasets.DatasetFile
type DatasetRecord = datasets.DatasetRecord
type DatasetReview = datasets.DatasetReview

type DatasetKind = datasets.Kind
type DatasetStatus = datasets.Status
type DatasetOperation = datasets.Operation

type Actor = auth.Actor
type Role = auth.Role

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&Bidang{},
		&Dataset{},
		&DatasetColumn{},
		&DatasetFile{},
		&DatasetRecord{},
		&DatasetReview{},
	}
}
