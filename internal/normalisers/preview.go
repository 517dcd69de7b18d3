package normalisers

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/crisislab/newsroom-core/internal/core/domain"
)

const (
	// LoadingPlaceholder is shown while a legacy remote document body is
	// still being resolved in the background.
	LoadingPlaceholder = "Loading document content..."

	// FallbackPreview is shown when no displayable text could be found.
	FallbackPreview = "Crisis analysis document available"

	// Ellipsis is appended to truncated display strings.
	Ellipsis = "..."
)

// ContentLookup reads resolved document bodies from the session's content
// cache. The preview functions never fetch; resolution is the aggregator's
// job.
type ContentLookup interface {
	Lookup(projectID, docKey string) (string, bool)
}

var (
	headingRe = regexp.MustCompile(`(?m)^#+\s+`)
	boldRe    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// DocumentPreview reduces a project's documents to a single display string.
// Only the first document is considered; it is a preview, not a digest. The
// resolution order follows the backend's historical shapes: structured text
// fields first, then the legacy key/value shape via the content cache.
func DocumentPreview(docs []domain.DocumentRef, projectID string, cache ContentLookup) string {
	if len(docs) == 0 {
		return ""
	}
	doc := docs[0]

	var content string
	switch {
	case doc.AnalysisResult != "":
		content = doc.AnalysisResult
	case doc.Content != "":
		content = doc.Content
	case doc.Text != "":
		content = doc.Text
	case doc.IsLegacy():
		content = legacyContent(doc, projectID, cache)
		if content == LoadingPlaceholder {
			return LoadingPlaceholder
		}
	}

	cleaned := Clean(content)
	if cleaned == "" {
		return FallbackPreview
	}
	return cleaned
}

func legacyContent(doc domain.DocumentRef, projectID string, cache ContentLookup) string {
	if cache != nil {
		if fetched, ok := cache.Lookup(projectID, doc.LegacyKey); ok {
			return fetched
		}
	}

	val := doc.LegacyValue
	switch val.Kind {
	case domain.LegacyValueRemote:
		return LoadingPlaceholder
	case domain.LegacyValueInline:
		return val.Text
	case domain.LegacyValueObject:
		switch {
		case val.Content != "":
			return val.Content
		case val.ObjectText != "":
			return val.ObjectText
		case val.AnalysisResult != "":
			return val.AnalysisResult
		default:
			// Last resort: show the raw object.
			return string(val.Raw)
		}
	}
	return ""
}

// Clean strips leading markdown heading markers, unwraps bold markers, and
// collapses all whitespace runs (including newlines) into single spaces.
func Clean(content string) string {
	content = headingRe.ReplaceAllString(content, "")
	content = boldRe.ReplaceAllString(content, "$1")
	content = spaceRe.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}

// Truncate shortens a display string to at most max runes, appending an
// ellipsis marker when it truncates. The cut point backs off past combining
// marks so a character cluster is never split mid-sequence.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := max
	for cut > 0 && unicode.In(runes[cut], unicode.Mn, unicode.Mc, unicode.Me) {
		cut--
	}
	return string(runes[:cut]) + Ellipsis
}
