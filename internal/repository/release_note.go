package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"impact-service/internal/model"
)

// ReleaseNoteRepository reads dashboard release notes
type ReleaseNoteRepository interface {
	ListLatest(ctx context.Context, limit int) ([]model.ReleaseNote, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.ReleaseNote, error)
}

type gormReleaseNoteRepository struct {
	db *gorm.DB
}

// NewReleaseNoteRepository returns a gorm-backed ReleaseNoteRepository
func NewReleaseNoteRepository(db *gorm.DB) ReleaseNoteRepository {
	return &gormReleaseNoteRepository{db: db}
}

func (r *gormReleaseNoteRepository) ListLatest(ctx context.Context, limit int) ([]model.ReleaseNote, error) {
	var notes []model.ReleaseNote
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&notes).Error; err != nil {
		return nil, translate(err)
	}
	return notes, nil
}

func (r *gormReleaseNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ReleaseNote, error) {
	var n model.ReleaseNote
	if err := r.db.WithContext(ctx).First(&n, "uuid = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &n, nil
}
