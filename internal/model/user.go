package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a tenant-scoped account
type User struct {
	UUID            uuid.UUID      `json:"uuid" gorm:"type:uuid;primaryKey"`
	Email           string         `json:"email" gorm:"type:varchar(255);uniqueIndex"`
	Password        string         `json:"-" gorm:"type:varchar(255)"`
	FirstName       string         `json:"first_name" gorm:"type:varchar(128)"`
	LastName        string         `json:"last_name" gorm:"type:varchar(128)"`
	JobTitle        string         `json:"job_title" gorm:"type:varchar(128)"`
	TenantUUID      uuid.UUID      `json:"tenant_id" gorm:"type:uuid;index"`
	IsTenantAdmin   bool           `json:"is_tenant_admin" gorm:"default:false"`
	IsPlatformAdmin bool           `json:"-" gorm:"default:false"`
	IsActive        bool           `json:"is_active" gorm:"default:true"`
	IsVisible       bool           `json:"-" gorm:"default:true"`
	CreatedAt       time.Time      `json:"date_joined"`
	UpdatedAt       time.Time      `json:"-"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`

	Tenant Tenant `json:"-" gorm:"foreignKey:TenantUUID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a UUID primary key if one was not provided
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	return nil
}
