package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"impact-service/internal/model"
)

// DonationRepository persists donations
type DonationRepository interface {
	Create(ctx context.Context, d *model.Donation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Donation, error)
	FindBySubscription(ctx context.Context, subscription string) (*model.Donation, error)
	// UpdateCheckout records the outcome of a completed checkout session
	UpdateCheckout(ctx context.Context, id uuid.UUID, status, subscription string) error
	// UpdateStatusBySubscription updates the status of the donation
	// attached to a subscription, if any.
	UpdateStatusBySubscription(ctx context.Context, subscription, status string) error
}

type gormDonationRepository struct {
	db *gorm.DB
}

// NewDonationRepository returns a gorm-backed DonationRepository
func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &gormDonationRepository{db: db}
}

func (r *gormDonationRepository) Create(ctx context.Context, d *model.Donation) error {
	return translate(r.db.WithContext(ctx).Create(d).Error)
}

func (r *gormDonationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Donation, error) {
	var d model.Donation
	if err := r.db.WithContext(ctx).Preload("Tenant").First(&d, "uuid = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *gormDonationRepository) FindBySubscription(ctx context.Context, subscription string) (*model.Donation, error) {
	var d model.Donation
	if err := r.db.WithContext(ctx).Preload("Tenant").First(&d, "subscription = ?", subscription).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *gormDonationRepository) UpdateCheckout(ctx context.Context, id uuid.UUID, status, subscription string) error {
	return translate(r.db.WithContext(ctx).Model(&model.Donation{}).
		Where("uuid = ?", id).
		Updates(map[string]interface{}{"status": status, "subscription": subscription}).Error)
}

func (r *gormDonationRepository) UpdateStatusBySubscription(ctx context.Context, subscription, status string) error {
	return translate(r.db.WithContext(ctx).Model(&model.Donation{}).
		Where("subscription = ?", subscription).
		Update("status", status).Error)
}
