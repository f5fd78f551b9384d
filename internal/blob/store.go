// Package blob abstracts the object store holding report documents,
// templates and story uploads. Keys are slash-separated paths; the first
// path segment acts as a directory for prefix listing and bulk deletion.
package blob

import "context"

// ObjectInfo describes a stored object returned by List
type ObjectInfo struct {
	Key      string
	ETag     string
	Metadata map[string]string
}

// Page is one page of a prefix listing. NextToken is empty on the last page.
type Page struct {
	Objects   []ObjectInfo
	NextToken string
}

// UploadOptions control an Upload call
type UploadOptions struct {
	ContentType string
	Metadata    map[string]string
	Overwrite   bool
}

// Store is the blob store gateway
type Store interface {
	Exists(ctx context.Context, bucket, key string) (bool, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Upload(ctx context.Context, bucket, key string, data []byte, opts UploadOptions) error
	Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error
	List(ctx context.Context, bucket, prefix, continuationToken string) (Page, error)
	Delete(ctx context.Context, bucket, key string) error
	DeletePrefix(ctx context.Context, bucket, prefix string) error
}
