package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DataSource is a third-party application (SharePoint, Dropbox, QuickBooks,
// etc.) maintained by platform admins. When IsOwnApp is true the platform's
// own client credentials are used for the OAuth exchange; otherwise the
// tenant supplies credentials on its DataConnection.
type DataSource struct {
	UUID             uuid.UUID `json:"uuid" gorm:"type:uuid;primaryKey"`
	Name             string    `json:"name" gorm:"type:varchar(64);uniqueIndex"`
	Slug             string    `json:"slug" gorm:"type:varchar(64);uniqueIndex"`
	ClientID         string    `json:"-" gorm:"type:varchar(255)"`
	ClientSecret     string    `json:"-" gorm:"type:varchar(255)"`
	Scopes           string    `json:"scopes" gorm:"type:jsonb"`
	AuthMethod       string    `json:"auth_method" gorm:"type:varchar(64)"` // "basic", "api_key", "oauth"
	AuthorizationURL string    `json:"authorization_url" gorm:"type:varchar(255)"`
	TokenURL         string    `json:"token_url" gorm:"type:varchar(255)"`
	Description      string    `json:"description" gorm:"type:varchar(255)"`
	IsOwnApp         bool      `json:"is_own_app" gorm:"default:true"`
	Metadata         string    `json:"metadata" gorm:"type:jsonb"`
}

// BeforeCreate assigns a UUID primary key if one was not provided
func (d *DataSource) BeforeCreate(tx *gorm.DB) (err error) {
	if d.UUID == uuid.Nil {
		d.UUID = uuid.New()
	}
	return nil
}
