package datasets

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/pusdatin/satudata-backend/internal/domain"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

type DatasetColumnRepo interface {
	Create(dbc dbctx.Context, cols []*types.DatasetColumn) ([]*types.DatasetColumn, error)
	ListByDatasetID(dbc dbctx.Context, datasetID uuid.UUID) ([]*types.DatasetColumn, error)
}

type datasetColumnRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatasetColumnRepo(db *gorm.DB, baseLog *logger.Logger) DatasetColumnRepo {
	repoLog := baseLog.With("repo", "DatasetColumnRepo")
	return &datasetColumnRepo{db: db, log: repoLog}
}

func (r *datasetColumnRepo) Create(dbc dbctx.Context, cols []*types.DatasetColumn) ([]*types.DatasetColumn, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(cols) == 0 {
		return []*types.DatasetColumn{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&cols).Error; err != nil {
		return nil, err
	}
	return cols, nil
}

// ListByDatasetID returns the columns in declared order.
func (r *datasetColumnRepo) ListByDatasetID(dbc dbctx.Context, datasetID uuid.UUID) ([]*types.DatasetColumn, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.DatasetColumn
	if datasetID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("dataset_id = ?", datasetID).
		Order("order_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
