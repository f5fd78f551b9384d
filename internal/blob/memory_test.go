package blob

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreUploadRespectsOverwriteGuard(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "b", "k", []byte("one"), UploadOptions{}))
	err := store.Upload(ctx, "b", "k", []byte("two"), UploadOptions{})
	require.Error(t, err)

	data, err := store.Download(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), data)

	require.NoError(t, store.Upload(ctx, "b", "k", []byte("two"), UploadOptions{Overwrite: true}))
	data, err = store.Download(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)
}

func TestMemoryStoreCopyAcrossBuckets(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Upload(ctx, "staging", "dir/page.html", []byte("<html/>"), UploadOptions{
		Metadata: map[string]string{"Category": "story"},
	}))

	require.NoError(t, store.Copy(ctx, "staging", "dir/page.html", "reports", "dir/page.html"))

	data, err := store.Download(ctx, "reports", "dir/page.html")
	require.NoError(t, err)
	assert.Equal(t, []byte("<html/>"), data)

	page, err := store.List(ctx, "reports", "dir/", "")
	require.NoError(t, err)
	require.Len(t, page.Objects, 1)
	assert.Equal(t, "story", page.Objects[0].Metadata["Category"])

	require.Error(t, store.Copy(ctx, "staging", "missing", "reports", "x"))
}

func TestMemoryStoreListScopesToPrefix(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	for _, key := range []string{"a/1.txt", "a/2.txt", "b/1.txt"} {
		require.NoError(t, store.Upload(ctx, "b", key, []byte("x"), UploadOptions{}))
	}

	page, err := store.List(ctx, "b", "a/", "")
	require.NoError(t, err)
	require.Len(t, page.Objects, 2)
	assert.Equal(t, "a/1.txt", page.Objects[0].Key)
	assert.Equal(t, "a/2.txt", page.Objects[1].Key)
	assert.Empty(t, page.NextToken)
}

func TestMemoryStoreListPaginates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	total := memoryPageSize + 5
	for i := 0; i < total; i++ {
		key := fmt.Sprintf("p/%03d.txt", i)
		require.NoError(t, store.Upload(ctx, "b", key, []byte("x"), UploadOptions{}))
	}

	first, err := store.List(ctx, "b", "p/", "")
	require.NoError(t, err)
	assert.Len(t, first.Objects, memoryPageSize)
	require.NotEmpty(t, first.NextToken)

	second, err := store.List(ctx, "b", "p/", first.NextToken)
	require.NoError(t, err)
	assert.Len(t, second.Objects, 5)
	assert.Empty(t, second.NextToken)

	seen := map[string]bool{}
	for _, obj := range append(first.Objects, second.Objects...) {
		seen[obj.Key] = true
	}
	assert.Len(t, seen, total)
}

func TestMemoryStoreDeletePrefix(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	for _, key := range []string{"rep-5/rep-5.pdf", "rep-5/image.png", "rep-55/rep-55.pdf"} {
		require.NoError(t, store.Upload(ctx, "b", key, []byte("x"), UploadOptions{}))
	}

	require.NoError(t, store.DeletePrefix(ctx, "b", "rep-5/"))
	assert.Equal(t, []string{"rep-55/rep-55.pdf"}, store.Keys("b"))
}

func TestMemoryStoreExistsAndDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	ok, err := store.Exists(ctx, "b", "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Upload(ctx, "b", "k", []byte("x"), UploadOptions{}))
	ok, err = store.Exists(ctx, "b", "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "b", "k"))
	ok, err = store.Exists(ctx, "b", "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
