package storage

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/errors"
)

// Object is a stored body with the options it was written with.
type Object struct {
	Body []byte
	Opts PutOptions
}

// MemoryStore keeps objects in a map. It backs local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
	denied  map[string]struct{}
	puts    int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]Object),
		denied:  make(map[string]struct{}),
	}
}

func objectPath(bucket, key string) string {
	return bucket + "/" + key
}

func (m *MemoryStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p := objectPath(bucket, key)
	if _, ok := m.denied[p]; ok {
		return nil, fmt.Errorf("%s: %w", p, apperrors.ErrAccessDenied)
	}
	obj, ok := m.objects[p]
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, apperrors.ErrNotFound)
	}
	return append([]byte(nil), obj.Body...), nil
}

func (m *MemoryStore) Put(_ context.Context, bucket, key string, body []byte, opts PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := objectPath(bucket, key)
	if _, ok := m.denied[p]; ok {
		return fmt.Errorf("%s: %w", p, apperrors.ErrAccessDenied)
	}
	m.objects[p] = Object{Body: append([]byte(nil), body...), Opts: opts}
	m.puts++
	return nil
}

func (m *MemoryStore) CheckBucket(context.Context, string) error {
	return nil
}

// Object returns a stored object.
func (m *MemoryStore) Object(bucket, key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[objectPath(bucket, key)]
	return obj, ok
}

// Deny makes every access to bucket/key fail with errors.ErrAccessDenied.
func (m *MemoryStore) Deny(bucket, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denied[objectPath(bucket, key)] = struct{}{}
}

// Puts counts successful writes.
func (m *MemoryStore) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}
