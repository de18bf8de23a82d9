package aggregates

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"github.com/pusdatin/satudata-backend/internal/domain/datasets"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// CASGuard provides compare-and-set helpers for aggregate writes.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) baseDB(dbc dbctx.Context) (*gorm.DB, error) {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx), nil
	}
	if g.db != nil {
		return g.db.WithContext(dbc.Ctx), nil
	}
	return nil, ValidationError("missing db transaction context")
}

// UpdateByStatus updates a row only when id+status guard matches.
func (g CASGuard) UpdateByStatus(dbc dbctx.Context, table string, id uuid.UUID, allowedStatuses []string, updates map[string]any) (bool, error) {
	db, err := g.baseDB(dbc)
	if err != nil {
		return false, err
	}
	table = strings.TrimSpace(table)
	if table == "" || id == uuid.Nil {
		return false, ValidationError("table and id are required for UpdateByStatus")
	}
	if len(allowedStatuses) == 0 {
		return false, ValidationError("allowedStatuses must not be empty")
	}
	res := db.Table(table).
		Where("id = ? AND status IN ?", id, allowedStatuses).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RequireDraft fails with dataset_locked, naming the current status, unless d is in DRAFT.
func RequireDraft(op string, d *datasets.Dataset) error {
	if d.Editable() {
		return nil
	}
	return &domainagg.Error{
		Code:    domainagg.CodeDatasetLocked,
		Op:      op,
		Message: fmt.Sprintf("dataset is %s; changes require %s", d.Status, datasets.StatusDraft),
		Meta:    map[string]any{"status": string(d.Status)},
	}
}

func datasetNotFound(op string, id uuid.UUID) error {
	return &domainagg.Error{
		Code:    domainagg.CodeDatasetNotFound,
		Op:      op,
		Message: fmt.Sprintf("dataset %s not found", id),
		Meta:    map[string]any{"dataset_id": id.String()},
	}
}

func forbidden(op, message string) error {
	return domainagg.NewError(domainagg.CodeForbidden, op, message, nil)
}
