package service

import (
	"context"

	"github.com/google/uuid"

	"impact-service/internal/model"
	"impact-service/internal/repository"
)

const latestReleaseNoteCount = 4

// ReleaseNoteService serves the public product changelog
type ReleaseNoteService struct {
	notes repository.ReleaseNoteRepository
}

func NewReleaseNoteService(notes repository.ReleaseNoteRepository) *ReleaseNoteService {
	return &ReleaseNoteService{notes: notes}
}

// Latest returns the four most recent release notes
func (s *ReleaseNoteService) Latest(ctx context.Context) ([]model.ReleaseNote, error) {
	return s.notes.ListLatest(ctx, latestReleaseNoteCount)
}

// Get returns one release note by ID
func (s *ReleaseNoteService) Get(ctx context.Context, id uuid.UUID) (*model.ReleaseNote, error) {
	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return note, nil
}
