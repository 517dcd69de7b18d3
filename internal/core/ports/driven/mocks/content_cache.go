package mocks

import (
	"context"
	"sync"
)

// MockContentCache is an in-memory ContentCache for testing.
type MockContentCache struct {
	mu      sync.RWMutex
	entries map[string]string

	SetOnceCalls int
}

// NewMockContentCache creates an empty cache.
func NewMockContentCache() *MockContentCache {
	return &MockContentCache{entries: make(map[string]string)}
}

func cacheKey(projectID, docKey string) string {
	return projectID + "_" + docKey
}

func (m *MockContentCache) Get(ctx context.Context, projectID, docKey string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[cacheKey(projectID, docKey)]
	return v, ok
}

func (m *MockContentCache) SetOnce(ctx context.Context, projectID, docKey, content string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetOnceCalls++
	key := cacheKey(projectID, docKey)
	if _, exists := m.entries[key]; exists {
		return false, nil
	}
	m.entries[key] = content
	return true, nil
}

func (m *MockContentCache) Contains(ctx context.Context, projectID, docKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[cacheKey(projectID, docKey)]
	return ok
}
