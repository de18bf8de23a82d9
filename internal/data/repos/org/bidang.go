package org

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/pusdatin/satudata-backend/internal/domain"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

type BidangRepo interface {
	Create(dbc dbctx.Context, b *types.Bidang) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Bidang, error)
	GetByCode(dbc dbctx.Context, code string) (*types.Bidang, error)
	List(dbc dbctx.Context) ([]*types.Bidang, error)
}

type bidangRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBidangRepo(db *gorm.DB, baseLog *logger.Logger) BidangRepo {
	repoLog := baseLog.With("repo", "BidangRepo")
	return &bidangRepo{db: db, log: repoLog}
}

func (r *bidangRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *bidangRepo) Create(dbc dbctx.Context, b *types.Bidang) error {
	if b == nil {
		return nil
	}
	return r.tx(dbc).Create(b).Error
}

func (r *bidangRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Bidang, error) {
	return r.take(r.tx(dbc).Where("id = ?", id))
}

func (r *bidangRepo) GetByCode(dbc dbctx.Context, code string) (*types.Bidang, error) {
	return r.take(r.tx(dbc).Where("code = ?", code))
}

func (r *bidangRepo) take(q *gorm.DB) (*types.Bidang, error) {
	var row types.Bidang
	err := q.Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *bidangRepo) List(dbc dbctx.Context) ([]*types.Bidang, error) {
	var out []*types.Bidang
	if err := r.tx(dbc).Order("code ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
