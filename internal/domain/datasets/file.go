package datasets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DatasetFile is one uploaded version of a dataset's content. Rows are never
// deleted; a newer upload deactivates the previous one.
type DatasetFile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DatasetID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_dataset_file_version,priority:1" json:"dataset_id"`
	Dataset   *Dataset  `gorm:"constraint:OnDelete:CASCADE;foreignKey:DatasetID;references:ID" json:"-"`

	OriginalName string `gorm:"column:original_name;not null" json:"original_name"`
	StorageKey   string `gorm:"column:storage_key;not null;index" json:"storage_key"`
	StoredPath   string `gorm:"column:stored_path" json:"stored_path"`
	MimeType     string `gorm:"column:mime_type" json:"mime_type"`
	SizeBytes    int64  `gorm:"column:size_bytes" json:"size_bytes"`
	Version      int    `gorm:"column:version;not null;uniqueIndex:idx_dataset_file_version,priority:2" json:"version"`
	IsActive     bool   `gorm:"column:is_active;not null" json:"is_active"`

	UploadedBy uuid.UUID `gorm:"type:uuid;column:uploaded_by" json:"uploaded_by"`
	UploadedAt time.Time `gorm:"column:uploaded_at;not null" json:"uploaded_at"`
}

func (DatasetFile) TableName() string { return "dataset_file" }

func (f *DatasetFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	return nil
}
