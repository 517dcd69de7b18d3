package driven

import (
	"context"

	"github.com/crisislab/newsroom-core/internal/core/domain"
)

// AnalysisGateway wraps the analysis backend's three project operations.
// None of the operations retry automatically; callers decide.
type AnalysisGateway interface {
	// SubmitAnalysis posts the multipart submission. It uses a dedicated
	// upload timeout and body-size ceiling, distinct from the default
	// request timeout. Failures wrap domain.ErrUploadFailed and carry the
	// server-supplied message when one is present.
	SubmitAnalysis(ctx context.Context, sub domain.Submission) (*domain.AnalysisReceipt, error)

	// ListProjects fetches the project index for a scope. An empty index
	// is a valid, non-error outcome. Failures wrap domain.ErrFetchFailed.
	ListProjects(ctx context.Context, scope string, limit int) ([]domain.ProjectStub, error)

	// GetProjectDetails fetches one project aggregate. Failures wrap
	// domain.ErrFetchFailed.
	GetProjectDetails(ctx context.Context, scope, projectID string) (*domain.Project, error)
}
