package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultStoryCategories is the category list assigned to new story rooms
const DefaultStoryCategories = `["testimonial", "quick moments", "experiences", "other"]`

// StoryRoom is a tenant's public story collection page
type StoryRoom struct {
	UUID          uuid.UUID `json:"uuid" gorm:"type:uuid;primaryKey"`
	Enabled       bool      `json:"enabled" gorm:"default:true"`
	Categories    string    `json:"categories" gorm:"type:jsonb"`
	AllowDonation bool      `json:"allow_donation" gorm:"default:false"`
	TenantUUID    uuid.UUID `json:"tenant_id" gorm:"type:uuid;index;column:tenant_uuid"`

	Tenant Tenant `json:"-" gorm:"foreignKey:TenantUUID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a UUID primary key and default categories
func (s *StoryRoom) BeforeCreate(tx *gorm.DB) (err error) {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	if s.Categories == "" {
		s.Categories = DefaultStoryCategories
	}
	return nil
}
