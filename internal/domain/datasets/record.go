package datasets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatasetRecord is one parsed row of the active file of a structured dataset.
type DatasetRecord struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	DatasetID uuid.UUID         `gorm:"type:uuid;not null;index:idx_dataset_record_row,priority:1" json:"dataset_id"`
	Dataset   *Dataset          `gorm:"constraint:OnDelete:CASCADE;foreignKey:DatasetID;references:ID" json:"-"`
	FileID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"file_id"`
	RowIndex  int               `gorm:"column:row_index;not null;index:idx_dataset_record_row,priority:2" json:"row_index"`
	Data      datatypes.JSONMap `gorm:"column:data" json:"data"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (DatasetRecord) TableName() string { return "dataset_record" }

func (r *DatasetRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RowData converts a parsed row into the JSON column value.
func RowData(row map[string]string) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
