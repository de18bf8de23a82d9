package org

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bidang is an organizational unit that owns and submits datasets.
type Bidang struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name string    `gorm:"column:name;not null" json:"name"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Bidang) TableName() string { return "bidang" }

func (b *Bidang) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
