package driven

import "context"

// ContentFetcher retrieves the text body of an externally referenced
// document. Implementations resolve object-storage URIs to fetchable HTTP
// URLs before requesting. Failures wrap domain.ErrContentFetchFailed.
type ContentFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}
