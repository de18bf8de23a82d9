package datasets

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PeriodColumn must be declared by every structured dataset.
const PeriodColumn = "PERIODE_DATA"

// DatasetColumn is one entry of a dataset's declared header contract.
type DatasetColumn struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DatasetID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_dataset_column_order,priority:1;uniqueIndex:idx_dataset_column_name,priority:1" json:"dataset_id"`
	Dataset     *Dataset  `gorm:"constraint:OnDelete:CASCADE;foreignKey:DatasetID;references:ID" json:"-"`
	Name        string    `gorm:"column:name;not null;uniqueIndex:idx_dataset_column_name,priority:2" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	OrderIndex  int       `gorm:"column:order_index;not null;uniqueIndex:idx_dataset_column_order,priority:2" json:"order_index"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (DatasetColumn) TableName() string { return "dataset_column" }

func (c *DatasetColumn) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

var nonToken = regexp.MustCompile(`[^A-Z0-9]+`)

// NormalizeColumnName converts a header or declared column name into its
// upper-case underscore token form: " periode data " -> "PERIODE_DATA".
func NormalizeColumnName(raw string) string {
	s := strings.TrimPrefix(raw, "\uFEFF")
	s = strings.ToUpper(strings.TrimSpace(s))
	s = nonToken.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
