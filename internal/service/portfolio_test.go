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
)

const testStagingBucket = "staging"

func newPortfolioFixture(t *testing.T) (*PortfolioService, *memPortfolioRepo, *blob.MemoryStore) {
	t.Helper()
	repo := &memPortfolioRepo{}
	store := blob.NewMemoryStore()
	reports := NewReportService(store, &fakeConverter{}, NewTemplateService(&memTemplateRepo{}), testReportBucket, "https://api.example.org")
	svc := NewPortfolioService(repo, store, reports, testStagingBucket, testReportBucket)
	return svc, repo, store
}

func stageHTML(t *testing.T, store *blob.MemoryStore, key, html string) {
	t.Helper()
	err := store.Upload(context.Background(), testStagingBucket, key, []byte(html), blob.UploadOptions{Overwrite: true})
	require.NoError(t, err)
}

func TestCreateCopiesBlobsAndSniffsTitle(t *testing.T) {
	svc, _, store := newPortfolioFixture(t)
	ctx := context.Background()
	stageHTML(t, store, "tenant-a/story/page.html", `<html><h4 class="t">Clean Water Program</h4></html>`)
	stageHTML(t, store, "tenant-a/story/img-1.png", "png-bytes")

	p, err := svc.Create(ctx, uuid.New(), uuid.New(), CreatePortfolioInput{
		Category:      model.CategoryStory,
		HTMLFileKey:   "tenant-a/story/page.html",
		ImageFileKeys: []string{"tenant-a/story/img-1.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Clean Water Program", p.Title)

	copied, err := store.Exists(ctx, testReportBucket, "tenant-a/story/page.html")
	require.NoError(t, err)
	assert.True(t, copied)
	copied, err = store.Exists(ctx, testReportBucket, "tenant-a/story/img-1.png")
	require.NoError(t, err)
	assert.True(t, copied)
}

func TestCreateFallsBackToGeneratedTitle(t *testing.T) {
	svc, _, store := newPortfolioFixture(t)
	stageHTML(t, store, "tenant-a/story/bare.html", "<html><p>no heading</p></html>")

	p, err := svc.Create(context.Background(), uuid.New(), uuid.New(), CreatePortfolioInput{
		Category:    model.CategoryStory,
		HTMLFileKey: "tenant-a/story/bare.html",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.Title, "Datastory_"), "got title %q", p.Title)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc, repo, _ := newPortfolioFixture(t)
	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), CreatePortfolioInput{
		Category:    "scrapbook",
		HTMLFileKey: "x.html",
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.portfolios)
}

func ownedStory(owner uuid.UUID, htmlFileKey string) *model.Portfolio {
	p := storyPortfolio(htmlFileKey)
	p.UserUUID = &owner
	return p
}

func TestGetHidesOtherUsersPortfolios(t *testing.T) {
	svc, repo, _ := newPortfolioFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	p := ownedStory(owner, "tenant-a/story/page.html")
	require.NoError(t, repo.Create(ctx, p))

	_, err := svc.Get(ctx, p.UUID, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Get(ctx, p.UUID, owner)
	require.NoError(t, err)
	assert.Equal(t, p.UUID, got.UUID)
}

func TestDeleteRemovesRowAndArtifacts(t *testing.T) {
	svc, repo, store := newPortfolioFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	p := ownedStory(owner, "tenant-a/story/page.html")
	require.NoError(t, repo.Create(ctx, p))

	seed := func(key string) {
		require.NoError(t, store.Upload(ctx, testReportBucket, key, []byte("x"), blob.UploadOptions{Overwrite: true}))
	}
	seed("tenant-a/story/page.html")
	seed("tenant-a/story/page.pdf")
	seed("tenant-b/other/page.html")

	require.NoError(t, svc.Delete(ctx, p.UUID, owner))

	assert.Empty(t, repo.portfolios)
	assert.Equal(t, []string{"tenant-b/other/page.html"}, store.Keys(testReportBucket))
}

func TestDeleteByStrangerLeavesEverything(t *testing.T) {
	svc, repo, _ := newPortfolioFixture(t)
	ctx := context.Background()
	p := ownedStory(uuid.New(), "tenant-a/story/page.html")
	require.NoError(t, repo.Create(ctx, p))

	err := svc.Delete(ctx, p.UUID, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, repo.portfolios, 1)
}

func TestListRejectsUnknownCategory(t *testing.T) {
	svc, _, _ := newPortfolioFixture(t)
	_, err := svc.List(context.Background(), uuid.New(), "scrapbook")
	require.ErrorIs(t, err, ErrValidation)
}
