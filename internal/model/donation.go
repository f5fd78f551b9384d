package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Donation tracks a checkout session. The UUID doubles as the payment
// provider's client reference ID so webhook events can be correlated back.
type Donation struct {
	UUID         uuid.UUID      `json:"uuid" gorm:"type:uuid;primaryKey"`
	Mode         string         `json:"mode" gorm:"type:varchar(64)"` // "payment" or "subscription"
	Amount       float64        `json:"amount"`
	DonateAs     string         `json:"donate_as" gorm:"type:varchar(128)"`
	CoverFees    bool           `json:"cover_fees" gorm:"default:false"`
	Status       string         `json:"status" gorm:"type:varchar(128)"`
	Subscription string         `json:"subscription" gorm:"type:varchar(128);index"`
	TenantUUID   uuid.UUID      `json:"tenant_id" gorm:"type:uuid;index;column:tenant_uuid"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	Tenant Tenant `json:"-" gorm:"foreignKey:TenantUUID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a UUID primary key if one was not provided
func (d *Donation) BeforeCreate(tx *gorm.DB) (err error) {
	if d.UUID == uuid.Nil {
		d.UUID = uuid.New()
	}
	return nil
}
