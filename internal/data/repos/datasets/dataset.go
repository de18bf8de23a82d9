package datasets

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/pusdatin/satudata-backend/internal/domain"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

// ListFilter selects datasets for listings and their matching counts.
type ListFilter struct {
	Statuses []types.DatasetStatus
	BidangID uuid.UUID
	// Search matches name or source, case-insensitively, as a substring.
	Search string
}

type DatasetRepo interface {
	Create(dbc dbctx.Context, d *types.Dataset) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Dataset, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Dataset, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	List(dbc dbctx.Context, f ListFilter, limit, offset int) ([]*types.Dataset, error)
	Count(dbc dbctx.Context, f ListFilter) (int64, error)
}

type datasetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatasetRepo(db *gorm.DB, baseLog *logger.Logger) DatasetRepo {
	repoLog := baseLog.With("repo", "DatasetRepo")
	return &datasetRepo{db: db, log: repoLog}
}

func (r *datasetRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *datasetRepo) Create(dbc dbctx.Context, d *types.Dataset) error {
	if d == nil {
		return nil
	}
	return r.tx(dbc).Create(d).Error
}

// GetByID returns nil, nil when the dataset does not exist.
func (r *datasetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Dataset, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Dataset
	err := r.tx(dbc).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// LockByID reads the dataset row with SELECT ... FOR UPDATE. Must run inside a transaction.
func (r *datasetRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Dataset, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Dataset
	err := r.tx(dbc).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *datasetRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return r.tx(dbc).Model(&types.Dataset{}).Where("id = ?", id).Updates(updates).Error
}

func (r *datasetRepo) List(dbc dbctx.Context, f ListFilter, limit, offset int) ([]*types.Dataset, error) {
	var out []*types.Dataset
	q := applyListFilter(r.tx(dbc).Model(&types.Dataset{}), f).
		Order("submitted_at ASC").
		Order("created_at ASC").
		Order("id ASC")
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

func (r *datasetRepo) Count(dbc dbctx.Context, f ListFilter) (int64, error) {
	var n int64
	if err := applyListFilter(r.tx(dbc).Model(&types.Dataset{}), f).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// applyListFilter is shared by List and Count so totals always match the page predicate.
func applyListFilter(q *gorm.DB, f ListFilter) *gorm.DB {
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.BidangID != uuid.Nil {
		q = q.Where("bidang_id = ?", f.BidangID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(source) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
