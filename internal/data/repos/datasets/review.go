package datasets

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/pusdatin/satudata-backend/internal/domain"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

type DatasetReviewRepo interface {
	Create(dbc dbctx.Context, rv *types.DatasetReview) error
	ListByDatasetID(dbc dbctx.Context, datasetID uuid.UUID) ([]*types.DatasetReview, error)
}

type datasetReviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatasetReviewRepo(db *gorm.DB, baseLog *logger.Logger) DatasetReviewRepo {
	repoLog := baseLog.With("repo", "DatasetReviewRepo")
	return &datasetReviewRepo{db: db, log: repoLog}
}

func (r *datasetReviewRepo) Create(dbc dbctx.Context, rv *types.DatasetReview) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if rv == nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).Create(rv).Error
}

// ListByDatasetID returns the transition log oldest first.
func (r *datasetReviewRepo) ListByDatasetID(dbc dbctx.Context, datasetID uuid.UUID) ([]*types.DatasetReview, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.DatasetReview
	if err := transaction.WithContext(dbc.Ctx).
		Where("dataset_id = ?", datasetID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
