package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impact-service/internal/blob"
	"impact-service/internal/model"
	"impact-service/internal/recaptcha"
)

const testStoryBucket = "stories"

func newStoryFixture(verifier *fakeVerifier) (*StoryService, *memRoomRepo, *memTenantRepo, *blob.MemoryStore) {
	rooms := &memRoomRepo{}
	tenants := &memTenantRepo{}
	store := blob.NewMemoryStore()
	if verifier == nil {
		verifier = &fakeVerifier{result: recaptcha.Result{Success: true, Score: 0.9, Action: "story_room"}}
	}
	svc := NewStoryService(rooms, tenants, store, verifier, testStoryBucket)
	return svc, rooms, tenants, store
}

func TestVerifyRoomByTenantName(t *testing.T) {
	svc, rooms, tenants, _ := newStoryFixture(nil)
	tenant := &model.Tenant{UUID: uuid.New(), Name: "River Cleanup", LogoKey: "logos/river.png"}
	tenants.tenants = append(tenants.tenants, tenant)
	rooms.rooms = append(rooms.rooms, &model.StoryRoom{
		UUID: uuid.New(), TenantUUID: tenant.UUID, Enabled: true,
		Categories: `["volunteering"]`, AllowDonation: true,
	})

	info, err := svc.VerifyRoom(context.Background(), "river cleanup")
	require.NoError(t, err)
	assert.Equal(t, tenant.UUID, info.TenantUUID)
	assert.Equal(t, "logos/river.png", info.Logo)
	assert.True(t, info.AllowDonation)
	assert.JSONEq(t, `["volunteering"]`, string(info.Categories))
}

func TestVerifyRoomDisabledLooksMissing(t *testing.T) {
	svc, rooms, tenants, _ := newStoryFixture(nil)
	tenant := &model.Tenant{UUID: uuid.New(), Name: "river-cleanup"}
	tenants.tenants = append(tenants.tenants, tenant)
	rooms.rooms = append(rooms.rooms, &model.StoryRoom{UUID: uuid.New(), TenantUUID: tenant.UUID, Enabled: false})

	_, err := svc.VerifyRoom(context.Background(), "river-cleanup")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUploadStoresTextWithMetadata(t *testing.T) {
	svc, _, _, store := newStoryFixture(nil)
	ctx := context.Background()
	tenantID := uuid.New()

	err := svc.Upload(ctx, StoryUploadInput{
		Token:    "tok",
		TenantID: tenantID.String(),
		Name:     "Sam",
		Category: "volunteering",
		Story:    "We cleaned the river bank.",
	})
	require.NoError(t, err)

	keys := store.Keys(testStoryBucket)
	require.Len(t, keys, 1)
	key := keys[0]
	assert.True(t, strings.HasPrefix(key, tenantID.String()+"/storyRoom/Sam-volunteering-"))
	assert.True(t, strings.HasSuffix(key, ".txt"))

	data, err := store.Download(ctx, testStoryBucket, key)
	require.NoError(t, err)
	assert.Contains(t, string(data), "We cleaned the river bank.")

	page, err := store.List(ctx, testStoryBucket, "", "")
	require.NoError(t, err)
	require.Len(t, page.Objects, 1)
	assert.Equal(t, "Sam", page.Objects[0].Metadata["Created_By_Display_Name"])
	assert.Equal(t, "volunteering", page.Objects[0].Metadata["Category"])
	assert.Equal(t, "We cleaned the river bank.", page.Objects[0].Metadata["Summary"])
}

func TestUploadRejectedByLowScore(t *testing.T) {
	svc, _, _, store := newStoryFixture(&fakeVerifier{
		result: recaptcha.Result{Success: true, Score: 0.2, Action: "story_room"},
	})
	err := svc.Upload(context.Background(), StoryUploadInput{Token: "tok", TenantID: uuid.New().String()})
	require.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, store.Keys(testStoryBucket))
}

func TestUploadRejectedByWrongAction(t *testing.T) {
	svc, _, _, store := newStoryFixture(&fakeVerifier{
		result: recaptcha.Result{Success: true, Score: 0.9, Action: "login"},
	})
	err := svc.Upload(context.Background(), StoryUploadInput{Token: "tok", TenantID: uuid.New().String()})
	require.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, store.Keys(testStoryBucket))
}

func TestRoomAutoCreatesDisabled(t *testing.T) {
	svc, rooms, _, _ := newStoryFixture(nil)
	tenantID := uuid.New()

	room, err := svc.Room(context.Background(), tenantID)
	require.NoError(t, err)
	assert.False(t, room.Enabled)
	assert.Equal(t, tenantID, room.TenantUUID)
	assert.Len(t, rooms.rooms, 1)

	again, err := svc.Room(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, room.UUID, again.UUID)
	assert.Len(t, rooms.rooms, 1)
}

func TestUpdateRoomPatchesOnlyProvidedFields(t *testing.T) {
	svc, _, _, _ := newStoryFixture(nil)
	tenantID := uuid.New()
	enabled := true

	room, err := svc.UpdateRoom(context.Background(), tenantID, RoomUpdateInput{Enabled: &enabled})
	require.NoError(t, err)
	assert.True(t, room.Enabled)
	categories := room.Categories

	room, err = svc.UpdateRoom(context.Background(), tenantID, RoomUpdateInput{Categories: []byte(`["impact"]`)})
	require.NoError(t, err)
	assert.True(t, room.Enabled)
	assert.NotEqual(t, categories, room.Categories)
	assert.Equal(t, `["impact"]`, room.Categories)
}

func TestFetchStoryEnforcesTenantPrefix(t *testing.T) {
	svc, _, _, store := newStoryFixture(nil)
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()
	key := owner.String() + "/storyRoom/Sam-volunteering-x.txt"
	require.NoError(t, store.Upload(ctx, testStoryBucket, key, []byte("story"), blob.UploadOptions{Overwrite: true}))

	text, err := svc.FetchStory(ctx, owner, key)
	require.NoError(t, err)
	assert.Equal(t, "story", text)

	_, err = svc.FetchStory(ctx, stranger, key)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFetchStoryEmptyNameIsEmpty(t *testing.T) {
	svc, _, _, _ := newStoryFixture(nil)
	text, err := svc.FetchStory(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestDeleteStoryEnforcesTenantPrefix(t *testing.T) {
	svc, _, _, store := newStoryFixture(nil)
	ctx := context.Background()
	owner := uuid.New()
	key := owner.String() + "/storyRoom/Sam-volunteering-x.txt"
	require.NoError(t, store.Upload(ctx, testStoryBucket, key, []byte("story"), blob.UploadOptions{Overwrite: true}))

	require.ErrorIs(t, svc.DeleteStory(ctx, uuid.New(), key), ErrNotFound)
	require.NoError(t, svc.DeleteStory(ctx, owner, key))
	assert.Empty(t, store.Keys(testStoryBucket))
}

func TestListStoriesScopedToTenant(t *testing.T) {
	svc, _, _, store := newStoryFixture(nil)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()
	for _, key := range []string{
		a.String() + "/storyRoom/one.txt",
		a.String() + "/storyRoom/two.txt",
		b.String() + "/storyRoom/other.txt",
	} {
		require.NoError(t, store.Upload(ctx, testStoryBucket, key, []byte("x"), blob.UploadOptions{Overwrite: true}))
	}

	entries, next, err := svc.ListStories(ctx, a, "")
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Len(t, entries, 2)
}
