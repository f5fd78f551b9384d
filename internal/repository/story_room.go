package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"impact-service/internal/model"
)

// StoryRoomRepository persists story rooms
type StoryRoomRepository interface {
	Create(ctx context.Context, s *model.StoryRoom) error
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*model.StoryRoom, error)
	FindEnabledByTenant(ctx context.Context, tenantID uuid.UUID) (*model.StoryRoom, error)
	Update(ctx context.Context, s *model.StoryRoom) error
}

type gormStoryRoomRepository struct {
	db *gorm.DB
}

// NewStoryRoomRepository returns a gorm-backed StoryRoomRepository
func NewStoryRoomRepository(db *gorm.DB) StoryRoomRepository {
	return &gormStoryRoomRepository{db: db}
}

func (r *gormStoryRoomRepository) Create(ctx context.Context, s *model.StoryRoom) error {
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

func (r *gormStoryRoomRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*model.StoryRoom, error) {
	var s model.StoryRoom
	if err := r.db.WithContext(ctx).Where("tenant_uuid = ?", tenantID).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *gormStoryRoomRepository) FindEnabledByTenant(ctx context.Context, tenantID uuid.UUID) (*model.StoryRoom, error) {
	var s model.StoryRoom
	err := r.db.WithContext(ctx).
		Where("tenant_uuid = ? AND enabled = ?", tenantID, true).
		First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *gormStoryRoomRepository) Update(ctx context.Context, s *model.StoryRoom) error {
	return translate(r.db.WithContext(ctx).Save(s).Error)
}
