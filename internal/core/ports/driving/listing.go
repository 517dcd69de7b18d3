package driving

import (
	"context"

	"github.com/crisislab/newsroom-core/internal/core/domain"
)

// ListingService aggregates a user's projects across owner scopes and
// prepares display strings for them.
type ListingService interface {
	// FetchProjects fetches the index for each scope and fans out detail
	// requests concurrently. Individual detail failures reduce the
	// result set without aborting the batch. The visible set is complete
	// when FetchProjects returns; document bodies referenced remotely
	// resolve in the background afterwards.
	FetchProjects(ctx context.Context, scopes []string, limit int) ([]*domain.Project, error)

	// Preview produces the normalized one-line document preview for a
	// project, consulting the content cache for legacy remote documents.
	Preview(ctx context.Context, project *domain.Project) string
}
