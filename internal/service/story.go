package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"impact-service/internal/blob"
	"impact-service/internal/model"
	"impact-service/internal/recaptcha"
	"impact-service/internal/repository"
	"impact-service/pkg/logger"
)

const (
	storyRecaptchaAction   = "story_room"
	storyRecaptchaMinScore = 0.5
	storyPrefixFormat      = "%s/storyRoom/"
)

// RoomInfo is the anonymous view of an enabled story room
type RoomInfo struct {
	TenantUUID    uuid.UUID       `json:"tenant_uuid"`
	Logo          string          `json:"logo,omitempty"`
	Categories    json.RawMessage `json:"categories"`
	AllowDonation bool            `json:"allow_donation"`
}

// StoryUploadInput is an anonymous story submission
type StoryUploadInput struct {
	Token    string `json:"token"`
	TenantID string `json:"tenant_uuid"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Story    string `json:"story"`
}

// StoryListEntry is one uploaded story in a tenant listing
type StoryListEntry struct {
	FileName  string `json:"file_name"`
	ETag      string `json:"etag"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
	Category  string `json:"category"`
	Summary   string `json:"summary"`
}

// RoomUpdateInput changes a tenant's story room settings
type RoomUpdateInput struct {
	Enabled       *bool           `json:"enabled"`
	Categories    json.RawMessage `json:"categories"`
	AllowDonation *bool           `json:"allow_donation"`
}

// StoryService runs the anonymous story collection flow. Stories are
// plain text blobs; the database only holds the per-tenant room record.
type StoryService struct {
	rooms       repository.StoryRoomRepository
	tenants     repository.TenantRepository
	store       blob.Store
	verifier    recaptcha.Verifier
	storyBucket string
}

func NewStoryService(rooms repository.StoryRoomRepository, tenants repository.TenantRepository, store blob.Store, verifier recaptcha.Verifier, storyBucket string) *StoryService {
	return &StoryService{
		rooms:       rooms,
		tenants:     tenants,
		store:       store,
		verifier:    verifier,
		storyBucket: storyBucket,
	}
}

// VerifyRoom resolves a tenant name to its enabled story room. A missing
// tenant and a disabled room produce the same answer.
func (s *StoryService) VerifyRoom(ctx context.Context, tenantName string) (*RoomInfo, error) {
	tenant, err := s.tenants.FindByName(ctx, tenantName)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	room, err := s.rooms.FindEnabledByTenant(ctx, tenant.UUID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return &RoomInfo{
		TenantUUID:    tenant.UUID,
		Logo:          tenant.LogoKey,
		Categories:    json.RawMessage(room.Categories),
		AllowDonation: room.AllowDonation,
	}, nil
}

// Upload stores an anonymous story after the human verification check
func (s *StoryService) Upload(ctx context.Context, input StoryUploadInput) error {
	result, err := s.verifier.Verify(ctx, input.Token)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("recaptcha result",
		zap.Bool("success", result.Success),
		zap.Float64("score", result.Score),
		zap.String("action", result.Action))
	if !result.Success || result.Action != storyRecaptchaAction || result.Score < storyRecaptchaMinScore {
		return ErrForbidden
	}

	if _, err := uuid.Parse(input.TenantID); err != nil {
		return fmt.Errorf("%w: bad tenant_uuid", ErrValidation)
	}

	now := time.Now().Format("2006-01-02 15:04:05")
	filename := sanitizeMetadataValue(fmt.Sprintf("%s-%s-%s.txt", input.Name, input.Category, now))

	summary := input.Story
	if len(summary) > 128 {
		summary = summary[:128]
	}
	metadata := map[string]string{
		"Created_By_Display_Name":       sanitizeMetadataValue(input.Name),
		"Created_At":                    now,
		"Last_Modified_By_Display_Name": sanitizeMetadataValue(input.Name),
		"Last_Modified_At":              now,
		"Category":                      sanitizeMetadataValue(input.Category),
		"Summary":                       sanitizeMetadataValue(summary),
	}

	text := fmt.Sprintf("StoryRoom Feedback: %s\nName: %s\n\nDate: %s\nStory: %s\n",
		input.Category, input.Name, now, input.Story)
	key := fmt.Sprintf(storyPrefixFormat, input.TenantID) + filename
	return s.store.Upload(ctx, s.storyBucket, key, []byte(text), blob.UploadOptions{
		ContentType: "text/plain",
		Metadata:    metadata,
		Overwrite:   true,
	})
}

// Room returns the tenant's story room, creating a disabled one the
// first time a tenant looks.
func (s *StoryService) Room(ctx context.Context, tenantID uuid.UUID) (*model.StoryRoom, error) {
	room, err := s.rooms.FindByTenant(ctx, tenantID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	room = &model.StoryRoom{Enabled: false, TenantUUID: tenantID}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// UpdateRoom changes the room's settings after a tenant ownership check
func (s *StoryService) UpdateRoom(ctx context.Context, tenantID uuid.UUID, input RoomUpdateInput) (*model.StoryRoom, error) {
	room, err := s.Room(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if input.Enabled != nil {
		room.Enabled = *input.Enabled
	}
	if len(input.Categories) > 0 {
		room.Categories = string(input.Categories)
	}
	if input.AllowDonation != nil {
		room.AllowDonation = *input.AllowDonation
	}
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// ListStories pages through the tenant's uploaded stories
func (s *StoryService) ListStories(ctx context.Context, tenantID uuid.UUID, continuationToken string) ([]StoryListEntry, string, error) {
	prefix := fmt.Sprintf(storyPrefixFormat, tenantID)
	page, err := s.store.List(ctx, s.storyBucket, prefix, continuationToken)
	if err != nil {
		return nil, "", err
	}

	entries := make([]StoryListEntry, 0, len(page.Objects))
	for _, obj := range page.Objects {
		entries = append(entries, StoryListEntry{
			FileName:  obj.Key,
			ETag:      obj.ETag,
			CreatedBy: obj.Metadata["Created_By_Display_Name"],
			CreatedAt: obj.Metadata["Created_At"],
			Category:  obj.Metadata["Category"],
			Summary:   obj.Metadata["Summary"],
		})
	}
	return entries, page.NextToken, nil
}

// FetchStory returns a story's text; an empty file name yields an empty story
func (s *StoryService) FetchStory(ctx context.Context, tenantID uuid.UUID, fileName string) (string, error) {
	if fileName == "" {
		return "", nil
	}
	if err := s.authorizeStoryKey(tenantID, fileName); err != nil {
		return "", err
	}
	data, err := s.store.Download(ctx, s.storyBucket, fileName)
	if err != nil {
		return "", fmt.Errorf("%w: story %s", ErrNotFound, fileName)
	}
	return string(data), nil
}

// DeleteStory removes a single uploaded story
func (s *StoryService) DeleteStory(ctx context.Context, tenantID uuid.UUID, fileName string) error {
	if fileName == "" {
		return fmt.Errorf("%w: file_name is required", ErrValidation)
	}
	if err := s.authorizeStoryKey(tenantID, fileName); err != nil {
		return err
	}
	return s.store.Delete(ctx, s.storyBucket, fileName)
}

// authorizeStoryKey requires story keys to sit under the tenant's prefix
func (s *StoryService) authorizeStoryKey(tenantID uuid.UUID, fileName string) error {
	prefix := fmt.Sprintf(storyPrefixFormat, tenantID)
	if len(fileName) <= len(prefix) || fileName[:len(prefix)] != prefix {
		return ErrNotFound
	}
	return nil
}
