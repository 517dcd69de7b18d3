package memcache

import (
	"context"
	"testing"
	"time"
)

func TestContentCache_SetOnce(t *testing.T) {
	cache := NewContentCache(time.Minute)
	ctx := context.Background()

	created, err := cache.SetOnce(ctx, "p1", "doc.txt", "first body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("first write must create the entry")
	}

	created, err = cache.SetOnce(ctx, "p1", "doc.txt", "second body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("second write must be rejected")
	}

	body, ok := cache.Get(ctx, "p1", "doc.txt")
	if !ok || body != "first body" {
		t.Errorf("write-once violated: %q (%t)", body, ok)
	}
}

func TestContentCache_GetMissing(t *testing.T) {
	cache := NewContentCache(0)
	if _, ok := cache.Get(context.Background(), "p1", "doc.txt"); ok {
		t.Error("expected miss for empty cache")
	}
}

func TestContentCache_Contains(t *testing.T) {
	cache := NewContentCache(time.Minute)
	ctx := context.Background()

	if cache.Contains(ctx, "p1", "doc.txt") {
		t.Error("empty cache must not contain the key")
	}
	if _, err := cache.SetOnce(ctx, "p1", "doc.txt", "body"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cache.Contains(ctx, "p1", "doc.txt") {
		t.Error("expected key present")
	}
	if cache.Contains(ctx, "p2", "doc.txt") {
		t.Error("keys must be scoped per project")
	}
}
