// Package storage implements domain.ObjectStorage over S3 and in memory.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"sync"
)

// MemoryStorage keeps object keys in a map. It backs local runs without a
// bucket and the service tests; Put simulates a client finishing an upload.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]int64
	deleted []string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]int64)}
}

func (m *MemoryStorage) PresignUpload(_ context.Context, key, contentType string, size int64) (string, error) {
	return fmt.Sprintf("memory://upload/%s?content_type=%s&size=%d", key, url.QueryEscape(contentType), size), nil
}

func (m *MemoryStorage) PresignDownload(_ context.Context, key string) (string, error) {
	return "memory://download/" + key, nil
}

func (m *MemoryStorage) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// Put records an uploaded object.
func (m *MemoryStorage) Put(key string, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = size
}

// Deleted lists keys passed to Delete, in call order.
func (m *MemoryStorage) Deleted() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.deleted...)
}
