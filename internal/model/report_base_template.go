package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateCategory is the closed set of template rendering targets
type TemplateCategory string

const (
	TemplatePDF TemplateCategory = "PDF"
	TemplatePPT TemplateCategory = "PPT"
)

// Valid reports whether the category is a known one
func (c TemplateCategory) Valid() bool {
	switch c {
	case TemplatePDF, TemplatePPT:
		return true
	}
	return false
}

// ReportBaseTemplate is a rendering template. A nil tenant marks an
// official platform template. Within a tenant+category at most one
// template is the default; the set-as-default write path enforces this.
type ReportBaseTemplate struct {
	UUID        uuid.UUID        `json:"uuid" gorm:"type:uuid;primaryKey"`
	Title       string           `json:"title" gorm:"type:varchar(255)"`
	Description string           `json:"description" gorm:"type:varchar(255)"`
	FileKey     string           `json:"file_key" gorm:"type:varchar(255)"`
	TenantUUID  *uuid.UUID       `json:"tenant_id" gorm:"type:uuid;index;column:tenant_uuid"`
	IsOfficial  bool             `json:"is_official" gorm:"default:false"`
	IsApproved  bool             `json:"is_approved" gorm:"default:false"`
	IsDefault   bool             `json:"is_default" gorm:"default:false"`
	Category    TemplateCategory `json:"category" gorm:"type:varchar(32);default:'PDF'"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `json:"-" gorm:"index"`
}

// BeforeCreate assigns a UUID primary key if one was not provided
func (t *ReportBaseTemplate) BeforeCreate(tx *gorm.DB) (err error) {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	return nil
}

// FileName returns the bare file name of the template blob
func (t *ReportBaseTemplate) FileName() string {
	for i := len(t.FileKey) - 1; i >= 0; i-- {
		if t.FileKey[i] == '/' {
			return t.FileKey[i+1:]
		}
	}
	return t.FileKey
}
