package datasets

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/pusdatin/satudata-backend/internal/domain"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

type DatasetFileRepo interface {
	Create(dbc dbctx.Context, f *types.DatasetFile) error
	GetMaxVersion(dbc dbctx.Context, datasetID uuid.UUID) (int, error)
	DeactivateOthers(dbc dbctx.Context, datasetID, keepID uuid.UUID) (int64, error)
	GetActive(dbc dbctx.Context, datasetID uuid.UUID) (*types.DatasetFile, error)
	CountActive(dbc dbctx.Context, datasetID uuid.UUID) (int64, error)
	ListByDatasetID(dbc dbctx.Context, datasetID uuid.UUID) ([]*types.DatasetFile, error)
	ReferencedStorageKeys(dbc dbctx.Context, keys []string) (map[string]bool, error)
}

type datasetFileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatasetFileRepo(db *gorm.DB, baseLog *logger.Logger) DatasetFileRepo {
	repoLog := baseLog.With("repo", "DatasetFileRepo")
	return &datasetFileRepo{db: db, log: repoLog}
}

func (r *datasetFileRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *datasetFileRepo) Create(dbc dbctx.Context, f *types.DatasetFile) error {
	if f == nil {
		return nil
	}
	return r.tx(dbc).Create(f).Error
}

// GetMaxVersion returns 0 when the dataset has no files.
func (r *datasetFileRepo) GetMaxVersion(dbc dbctx.Context, datasetID uuid.UUID) (int, error) {
	var maxVersion int
	err := r.tx(dbc).
		Model(&types.DatasetFile{}).
		Where("dataset_id = ?", datasetID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error
	if err != nil {
		return 0, err
	}
	return maxVersion, nil
}

func (r *datasetFileRepo) DeactivateOthers(dbc dbctx.Context, datasetID, keepID uuid.UUID) (int64, error) {
	res := r.tx(dbc).
		Model(&types.DatasetFile{}).
		Where("dataset_id = ? AND id <> ? AND is_active = ?", datasetID, keepID, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// GetActive returns nil, nil when no file is active.
func (r *datasetFileRepo) GetActive(dbc dbctx.Context, datasetID uuid.UUID) (*types.DatasetFile, error) {
	var row types.DatasetFile
	err := r.tx(dbc).
		Where("dataset_id = ? AND is_active = ?", datasetID, true).
		Order("version DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *datasetFileRepo) CountActive(dbc dbctx.Context, datasetID uuid.UUID) (int64, error) {
	var n int64
	err := r.tx(dbc).
		Model(&types.DatasetFile{}).
		Where("dataset_id = ? AND is_active = ?", datasetID, true).
		Count(&n).Error
	return n, err
}

// ListByDatasetID returns the version history, newest first.
func (r *datasetFileRepo) ListByDatasetID(dbc dbctx.Context, datasetID uuid.UUID) ([]*types.DatasetFile, error) {
	var out []*types.DatasetFile
	if err := r.tx(dbc).
		Where("dataset_id = ?", datasetID).
		Order("version DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ReferencedStorageKeys reports which of keys are recorded on some file row.
func (r *datasetFileRepo) ReferencedStorageKeys(dbc dbctx.Context, keys []string) (map[string]bool, error) {
	out := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	var found []string
	if err := r.tx(dbc).
		Model(&types.DatasetFile{}).
		Where("storage_key IN ?", keys).
		Distinct().
		Pluck("storage_key", &found).Error; err != nil {
		return nil, err
	}
	for _, k := range found {
		out[k] = true
	}
	return out, nil
}
