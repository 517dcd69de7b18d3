package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/crisislab/newsroom-core/internal/core/domain"
)

// MockContentFetcher serves canned bodies by URL and records fetch counts.
type MockContentFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  map[string]int
}

// NewMockContentFetcher creates an empty fetcher; unknown URLs fail with
// domain.ErrContentFetchFailed.
func NewMockContentFetcher() *MockContentFetcher {
	return &MockContentFetcher{
		bodies: make(map[string]string),
		calls:  make(map[string]int),
	}
}

// SetBody registers the body returned for a URL.
func (m *MockContentFetcher) SetBody(url, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies[url] = body
}

func (m *MockContentFetcher) FetchText(ctx context.Context, url string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[url]++
	body, ok := m.bodies[url]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrContentFetchFailed, url)
	}
	return body, nil
}

// FetchCount returns how many times a URL was requested.
func (m *MockContentFetcher) FetchCount(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[url]
}
