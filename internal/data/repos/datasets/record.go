package datasets

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/pusdatin/satudata-backend/internal/domain"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

const DefaultRecordBatchSize = 500

type DatasetRecordRepo interface {
	DeleteByDatasetID(dbc dbctx.Context, datasetID uuid.UUID) (int64, error)
	CreateInBatches(dbc dbctx.Context, rows []*types.DatasetRecord, batchSize int) (int64, error)
	CountByDatasetID(dbc dbctx.Context, datasetID uuid.UUID) (int64, error)
	ListByDatasetID(dbc dbctx.Context, datasetID uuid.UUID, limit, offset int) ([]*types.DatasetRecord, error)
}

type datasetRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatasetRecordRepo(db *gorm.DB, baseLog *logger.Logger) DatasetRecordRepo {
	repoLog := baseLog.With("repo", "DatasetRecordRepo")
	return &datasetRecordRepo{db: db, log: repoLog}
}

func (r *datasetRecordRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

// DeleteByDatasetID removes every record of the dataset and returns how many were deleted.
func (r *datasetRecordRepo) DeleteByDatasetID(dbc dbctx.Context, datasetID uuid.UUID) (int64, error) {
	res := r.tx(dbc).Where("dataset_id = ?", datasetID).Delete(&types.DatasetRecord{})
	return res.RowsAffected, res.Error
}

func (r *datasetRecordRepo) CreateInBatches(dbc dbctx.Context, rows []*types.DatasetRecord, batchSize int) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultRecordBatchSize
	}
	if err := r.tx(dbc).CreateInBatches(rows, batchSize).Error; err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (r *datasetRecordRepo) CountByDatasetID(dbc dbctx.Context, datasetID uuid.UUID) (int64, error) {
	var n int64
	err := r.tx(dbc).Model(&types.DatasetRecord{}).Where("dataset_id = ?", datasetID).Count(&n).Error
	return n, err
}

func (r *datasetRecordRepo) ListByDatasetID(dbc dbctx.Context, datasetID uuid.UUID, limit, offset int) ([]*types.DatasetRecord, error) {
	var out []*types.DatasetRecord
	q := r.tx(dbc).Where("dataset_id = ?", datasetID).Order("row_index ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
