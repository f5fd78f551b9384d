package blob

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
)

const memoryPageSize = 100

type memoryObject struct {
	data     []byte
	metadata map[string]string
}

// MemoryStore is an in-process Store used for local development and tests
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string]memoryObject
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]map[string]memoryObject)}
}

func (m *MemoryStore) bucket(name string) map[string]memoryObject {
	b, ok := m.buckets[name]
	if !ok {
		b = make(map[string]memoryObject)
		m.buckets[name] = b
	}
	return b
}

// Exists checks whether an object is present
func (m *MemoryStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.buckets[bucket][key]
	return ok, nil
}

// Download returns a copy of the object body
func (m *MemoryStore) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.buckets[bucket][key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s/%s", bucket, key)
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return data, nil
}

// Upload stores an object
func (m *MemoryStore) Upload(ctx context.Context, bucket, key string, data []byte, opts UploadOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bucket(bucket)
	if _, ok := b[key]; ok && !opts.Overwrite {
		return fmt.Errorf("object already exists: %s/%s", bucket, key)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	b[key] = memoryObject{data: stored, metadata: opts.Metadata}
	return nil
}

// Copy duplicates an object
func (m *MemoryStore) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.buckets[srcBucket][srcKey]
	if !ok {
		return fmt.Errorf("object not found: %s/%s", srcBucket, srcKey)
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	m.bucket(dstBucket)[dstKey] = memoryObject{data: data, metadata: obj.metadata}
	return nil
}

// List returns one page of objects under a prefix in key order
func (m *MemoryStore) List(ctx context.Context, bucket, prefix, continuationToken string) (Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0)
	for k := range m.buckets[bucket] {
		if strings.HasPrefix(k, prefix) && k > continuationToken {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	page := Page{}
	for _, k := range keys {
		if len(page.Objects) == memoryPageSize {
			page.NextToken = page.Objects[len(page.Objects)-1].Key
			return page, nil
		}
		obj := m.buckets[bucket][k]
		sum := md5.Sum(obj.data)
		page.Objects = append(page.Objects, ObjectInfo{
			Key:      k,
			ETag:     hex.EncodeToString(sum[:]),
			Metadata: obj.metadata,
		})
	}
	return page, nil
}

// Delete removes a single object
func (m *MemoryStore) Delete(ctx context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buckets[bucket], key)
	return nil
}

// DeletePrefix removes every object under a prefix
func (m *MemoryStore) DeletePrefix(ctx context.Context, bucket, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.buckets[bucket] {
		if strings.HasPrefix(k, prefix) {
			delete(m.buckets[bucket], k)
		}
	}
	return nil
}

// Keys returns every key of a bucket in sorted order, for tests
func (m *MemoryStore) Keys(bucket string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.buckets[bucket]))
	for k := range m.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
