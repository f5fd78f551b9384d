package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DataConnection is a tenant's stored OAuth credential for a data source.
// AuthInfo is opaque JSON holding at least the access token. A nil
// AccessTokenExpiresAt marks a non-expiring token; the refresh operation
// skips such connections silently.
type DataConnection struct {
	UUID                  uuid.UUID      `json:"uuid" gorm:"type:uuid;primaryKey"`
	TenantUUID            uuid.UUID      `json:"tenant_id" gorm:"type:uuid;index;column:tenant_uuid"`
	DataSource            string         `json:"data_source" gorm:"type:varchar(64);default:'sharepoint'"`
	AuthInfo              string         `json:"-" gorm:"type:jsonb"`
	AccessTokenExpiresAt  *time.Time     `json:"access_token_expires_at"`
	RefreshToken          string         `json:"-" gorm:"type:text"`
	RefreshTokenExpiresAt *time.Time     `json:"refresh_token_expires_at"`
	OtherInfo             string         `json:"other_info" gorm:"type:jsonb"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `json:"-" gorm:"index"`

	// Tenant-supplied application credentials, used only when the data
	// source is not a platform-owned app.
	ClientID         string `json:"-" gorm:"type:varchar(255)"`
	ClientSecret     string `json:"-" gorm:"type:varchar(255)"`
	Scopes           string `json:"scopes" gorm:"type:jsonb"`
	AuthorizationURL string `json:"authorization_url" gorm:"type:varchar(255)"`
	TokenURL         string `json:"token_url" gorm:"type:varchar(255)"`

	Tenant Tenant `json:"-" gorm:"foreignKey:TenantUUID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a UUID primary key if one was not provided
func (d *DataConnection) BeforeCreate(tx *gorm.DB) (err error) {
	if d.UUID == uuid.Nil {
		d.UUID = uuid.New()
	}
	return nil
}
