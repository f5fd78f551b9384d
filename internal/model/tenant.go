package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant represents a nonprofit organization, the top-level multi-tenancy
// boundary. Every tenant-owned record is cascade-deleted with it.
type Tenant struct {
	UUID            uuid.UUID `json:"uuid" gorm:"type:uuid;primaryKey"`
	Name            string    `json:"name" gorm:"type:varchar(128);not null"`
	Email           string    `json:"email" gorm:"type:varchar(255)"`
	Phone           string    `json:"phone" gorm:"type:varchar(32)"`
	OrgInfo         string    `json:"org_info" gorm:"type:text"`
	LogoKey         string    `json:"logo_key" gorm:"type:varchar(255)"`
	Website         string    `json:"website" gorm:"type:varchar(255)"`
	SupportEmail    string    `json:"support_email" gorm:"type:varchar(255)"`
	NewsTopics      string    `json:"news_topics" gorm:"type:varchar(128)"`
	PrimaryLocation string    `json:"primary_location" gorm:"type:varchar(128)"`
	CreatedAt       time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key if one was not provided
func (t *Tenant) BeforeCreate(tx *gorm.DB) (err error) {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	return nil
}
