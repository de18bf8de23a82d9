package datasets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DatasetReview is an append-only log entry of one lifecycle transition.
type DatasetReview struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DatasetID  uuid.UUID `gorm:"type:uuid;not null;index" json:"dataset_id"`
	Dataset    *Dataset  `gorm:"constraint:OnDelete:CASCADE;foreignKey:DatasetID;references:ID" json:"-"`
	FromStatus Status    `gorm:"column:from_status;not null" json:"from_status"`
	ToStatus   Status    `gorm:"column:to_status;not null" json:"to_status"`
	Operation  Operation `gorm:"column:operation;not null" json:"operation"`
	ActorID    uuid.UUID `gorm:"type:uuid;column:actor_id;not null" json:"actor_id"`
	ActorRole  Role      `gorm:"column:actor_role;not null" json:"actor_role"`
	Reason     string    `gorm:"column:reason" json:"reason,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (DatasetReview) TableName() string { return "dataset_review" }

func (r *DatasetReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
