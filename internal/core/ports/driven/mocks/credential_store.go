package mocks

import (
	"sync"

	"github.com/crisislab/newsroom-core/internal/core/domain"
)

// MockCredentialStore is an in-memory CredentialStore for testing.
type MockCredentialStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMockCredentialStore creates an empty store.
func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{values: make(map[string]string)}
}

func (m *MockCredentialStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCredentialStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *MockCredentialStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
