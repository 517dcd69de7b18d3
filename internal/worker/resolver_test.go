package worker

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/crisislab/newsroom-core/internal/core/domain"
	"github.com/crisislab/newsroom-core/internal/core/ports/driven/mocks"
)

func projectWithRemoteDoc(t *testing.T, projectID, docKey, url string) *domain.Project {
	t.Helper()
	var doc domain.DocumentRef
	if err := json.Unmarshal([]byte(`{"`+docKey+`":"`+url+`"}`), &doc); err != nil {
		t.Fatalf("failed to build legacy doc: %v", err)
	}
	return &domain.Project{ProjectID: projectID, Documents: []domain.DocumentRef{doc}}
}

func startTestResolver(t *testing.T, fetcher *mocks.MockContentFetcher, cache *mocks.MockContentCache) *ContentResolver {
	t.Helper()
	r := NewContentResolver(ContentResolverConfig{
		Fetcher:     fetcher,
		Cache:       cache,
		Concurrency: 2,
	})
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("failed to start resolver: %v", err)
	}
	t.Cleanup(r.Stop)
	return r
}

func waitForCache(t *testing.T, cache *mocks.MockContentCache, projectID, docKey string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if body, ok := cache.Get(context.Background(), projectID, docKey); ok {
			return body
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("content for %s/%s never resolved", projectID, docKey)
	return ""
}

func TestContentResolver_ResolvesRemoteDoc(t *testing.T) {
	fetcher := mocks.NewMockContentFetcher()
	fetcher.SetBody("https://cdn.example.com/old.txt", "remote body")
	cache := mocks.NewMockContentCache()
	r := startTestResolver(t, fetcher, cache)

	r.Enqueue([]*domain.Project{
		projectWithRemoteDoc(t, "p1", "old.txt", "https://cdn.example.com/old.txt"),
	})

	body := waitForCache(t, cache, "p1", "old.txt")
	if body != "remote body" {
		t.Errorf("unexpected body: %q", body)
	}
}

func TestContentResolver_SkipsNonRemoteDocs(t *testing.T) {
	fetcher := mocks.NewMockContentFetcher()
	cache := mocks.NewMockContentCache()
	r := startTestResolver(t, fetcher, cache)

	inline := projectWithRemoteDoc(t, "p1", "notes.txt", "plain inline text")
	structured := &domain.Project{
		ProjectID: "p2",
		Documents: []domain.DocumentRef{{Filename: "r.pdf", AnalysisResult: "done"}},
	}
	r.Enqueue([]*domain.Project{inline, structured})

	time.Sleep(50 * time.Millisecond)
	if cache.SetOnceCalls != 0 {
		t.Errorf("nothing should have been resolved, got %d writes", cache.SetOnceCalls)
	}
}

func TestContentResolver_DeduplicatesFetches(t *testing.T) {
	fetcher := mocks.NewMockContentFetcher()
	fetcher.SetBody("https://cdn.example.com/old.txt", "body")
	cache := mocks.NewMockContentCache()
	r := startTestResolver(t, fetcher, cache)

	project := projectWithRemoteDoc(t, "p1", "old.txt", "https://cdn.example.com/old.txt")
	r.Enqueue([]*domain.Project{project})
	r.Enqueue([]*domain.Project{project})

	waitForCache(t, cache, "p1", "old.txt")

	// Re-listing after resolution must hit the cache guard, not fetch.
	r.Enqueue([]*domain.Project{project})
	time.Sleep(50 * time.Millisecond)

	if n := fetcher.FetchCount("https://cdn.example.com/old.txt"); n != 1 {
		t.Errorf("expected exactly one fetch, got %d", n)
	}
}

func TestContentResolver_FailureCachesPlaceholder(t *testing.T) {
	fetcher := mocks.NewMockContentFetcher() // no bodies registered
	cache := mocks.NewMockContentCache()
	r := startTestResolver(t, fetcher, cache)

	r.Enqueue([]*domain.Project{
		projectWithRemoteDoc(t, "p1", "dead.txt", "https://cdn.example.com/dead.txt"),
	})

	body := waitForCache(t, cache, "p1", "dead.txt")
	if !strings.Contains(body, "Unable to load content from dead.txt") {
		t.Errorf("expected placeholder body, got %q", body)
	}
	if !strings.Contains(body, "restricted or unavailable") {
		t.Errorf("placeholder wording changed: %q", body)
	}
}

func TestContentResolver_StartIsIdempotent(t *testing.T) {
	r := NewContentResolver(ContentResolverConfig{
		Fetcher: mocks.NewMockContentFetcher(),
		Cache:   mocks.NewMockContentCache(),
	})
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("failed to start resolver: %v", err)
	}
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("second start must be a no-op: %v", err)
	}
	r.Stop()
	r.Stop() // stopping twice is safe
}
