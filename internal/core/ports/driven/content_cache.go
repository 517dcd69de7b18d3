package driven

import "context"

// ContentCache holds fetched document bodies keyed by (projectID, docKey)
// for the duration of a listing session. Each key is written at most once;
// SetOnce reports whether the write took effect so producers can deduplicate.
type ContentCache interface {
	// Get returns the cached body for a document, if present.
	Get(ctx context.Context, projectID, docKey string) (string, bool)

	// SetOnce stores content under the key unless an entry already
	// exists. It returns true when this call created the entry.
	SetOnce(ctx context.Context, projectID, docKey, content string) (bool, error)

	// Contains reports whether the key already has an entry.
	Contains(ctx context.Context, projectID, docKey string) bool
}
