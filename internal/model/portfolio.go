package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PortfolioCategory is the closed set of portfolio kinds
type PortfolioCategory string

const (
	CategoryImpactReport PortfolioCategory = "impactReport"
	CategoryStory        PortfolioCategory = "story"
)

// Valid reports whether the category is a known one
func (c PortfolioCategory) Valid() bool {
	switch c {
	case CategoryImpactReport, CategoryStory:
		return true
	}
	return false
}

// Portfolio represents a generated report artifact. The stored document
// bytes live in the blob store; the record links to them by key only.
// Impact reports additionally carry a report ID that names the
// `{report_id}/` blob directory containing the JSON payload and every
// rendered output format.
type Portfolio struct {
	UUID        uuid.UUID         `json:"uuid" gorm:"type:uuid;primaryKey"`
	TenantUUID  uuid.UUID         `json:"tenant_id" gorm:"type:uuid;index;column:tenant_uuid"`
	UserUUID    *uuid.UUID        `json:"user_id" gorm:"type:uuid;index;column:user_uuid"`
	Category    PortfolioCategory `json:"category" gorm:"type:varchar(64);default:'impactReport'"`
	Title       string            `json:"title" gorm:"type:varchar(255)"`
	Description string            `json:"description" gorm:"type:varchar(255)"`
	HTMLFileKey string            `json:"html_file_key" gorm:"type:varchar(255)"`
	ReportID    string            `json:"report_id" gorm:"type:varchar(128);index"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `json:"-" gorm:"index"`

	Tenant Tenant `json:"-" gorm:"foreignKey:TenantUUID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a UUID primary key if one was not provided
func (p *Portfolio) BeforeCreate(tx *gorm.DB) (err error) {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	return nil
}
