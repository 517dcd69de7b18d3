package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/crisislab/newsroom-core/internal/core/domain"
	"github.com/crisislab/newsroom-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ContentFetcher = (*Fetcher)(nil)

const s3Scheme = "s3://"

// maxBodySize bounds fetched document bodies; previews never need more.
const maxBodySize = 4 * 1024 * 1024

// Fetcher retrieves document text bodies over HTTP. Object-storage URIs are
// rewritten into their public HTTP form before fetching.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a fetcher with the given timeout (default 30s).
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{httpClient: &http.Client{Timeout: timeout}}
}

// RewriteStorageURL converts s3://bucket/path into the virtual-hosted HTTP
// form https://bucket.s3.amazonaws.com/path. Non-storage URLs pass through
// unchanged.
func RewriteStorageURL(rawURL string) string {
	if !strings.HasPrefix(rawURL, s3Scheme) {
		return rawURL
	}
	rest := strings.TrimPrefix(rawURL, s3Scheme)
	bucket, path, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return rawURL
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, path)
}

// FetchText retrieves the text body at a URL. Failures wrap
// domain.ErrContentFetchFailed; callers degrade to a placeholder.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	fetchURL := RewriteStorageURL(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request for %s: %v", domain.ErrContentFetchFailed, rawURL, err)
	}
	req.Header.Set("Accept", "text/plain, text/html, application/json, */*")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch %s: %v", domain.ErrContentFetchFailed, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: fetch %s: status %d", domain.ErrContentFetchFailed, rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", domain.ErrContentFetchFailed, rawURL, err)
	}
	return string(body), nil
}
