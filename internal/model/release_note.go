package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReleaseNote is shown on the dashboard, latest first
type ReleaseNote struct {
	UUID        uuid.UUID `json:"uuid" gorm:"type:uuid;primaryKey"`
	Heading     string    `json:"heading" gorm:"type:varchar(255)"`
	SubHeading  string    `json:"sub_heading" gorm:"type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key if one was not provided
func (r *ReleaseNote) BeforeCreate(tx *gorm.DB) (err error) {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	return nil
}
