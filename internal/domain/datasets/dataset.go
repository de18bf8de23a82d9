package datasets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Dataset struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BidangID uuid.UUID `gorm:"type:uuid;not null;index" json:"bidang_id"`
	Kind     Kind      `gorm:"column:kind;not null" json:"kind"`
	Status   Status    `gorm:"column:status;not null;index;default:'DRAFT'" json:"status"`

	Name        string      `gorm:"column:name;not null" json:"name"`
	Description string      `gorm:"column:description" json:"description"`
	AccessLevel AccessLevel `gorm:"column:access_level;not null;default:'PUBLIC'" json:"access_level"`
	Category    string      `gorm:"column:category" json:"category"`
	Periodicity string      `gorm:"column:periodicity" json:"periodicity"`
	Contact     string      `gorm:"column:contact" json:"contact"`
	Topic       string      `gorm:"column:topic" json:"topic"`
	Source      string      `gorm:"column:source" json:"source"`
	Size        string      `gorm:"column:size" json:"size"`
	Unit        string      `gorm:"column:unit" json:"unit"`

	// ReviewNote holds the reason of the last rejection; cleared on revise.
	ReviewNote  string     `gorm:"column:review_note" json:"review_note,omitempty"`
	SubmittedAt *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;column:created_by" json:"created_by"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Dataset) TableName() string { return "dataset" }

func (d *Dataset) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = StatusDraft
	}
	if d.AccessLevel == "" {
		d.AccessLevel = AccessPublic
	}
	return nil
}

// Editable reports whether descriptive fields may still change.
func (d *Dataset) Editable() bool {
	return d != nil && d.Status == StatusDraft
}
