package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/crisislab/newsroom-core/internal/core/domain"
	"github.com/crisislab/newsroom-core/internal/core/ports/driven"
	"github.com/crisislab/newsroom-core/internal/core/ports/driving"
	"github.com/crisislab/newsroom-core/internal/normalisers"
)

// Ensure ListingAggregator implements ListingService
var _ driving.ListingService = (*ListingAggregator)(nil)

// ContentResolver accepts projects whose legacy documents reference remote
// content. Enqueue must not block; resolution happens in the background.
type ContentResolver interface {
	Enqueue(projects []*domain.Project)
}

// ListingAggregator fetches a user's project index per owner scope and fans
// out detail requests concurrently. Individual detail failures reduce the
// visible set; they never abort the batch.
type ListingAggregator struct {
	gateway  driven.AnalysisGateway
	cache    driven.ContentCache
	resolver ContentResolver
	logger   *slog.Logger
}

// ListingAggregatorConfig holds dependencies for the aggregator.
type ListingAggregatorConfig struct {
	Gateway  driven.AnalysisGateway
	Cache    driven.ContentCache
	Resolver ContentResolver // optional; nil disables background resolution
	Logger   *slog.Logger
}

// NewListingAggregator creates a new aggregator.
func NewListingAggregator(cfg ListingAggregatorConfig) *ListingAggregator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingAggregator{
		gateway:  cfg.Gateway,
		cache:    cfg.Cache,
		resolver: cfg.Resolver,
		logger:   logger,
	}
}

// FetchProjects produces the visible project set for the given scopes. The
// set is complete when this returns; remotely referenced document bodies
// resolve in the background afterwards and land in the content cache.
//
// An empty index is a valid outcome and is kept distinct from index-fetch
// failure: only when every scope's index request fails does the aggregate
// error.
func (a *ListingAggregator) FetchProjects(ctx context.Context, scopes []string, limit int) ([]*domain.Project, error) {
	var all []*domain.Project
	var indexErrs []error
	reached := 0

	for _, scope := range scopes {
		stubs, err := a.gateway.ListProjects(ctx, scope, limit)
		if err != nil {
			a.logger.Warn("project index fetch failed", "scope", scope, "error", err)
			indexErrs = append(indexErrs, err)
			continue
		}
		reached++
		if len(stubs) == 0 {
			continue
		}
		all = append(all, a.fetchDetails(ctx, scope, stubs)...)
	}

	if reached == 0 && len(indexErrs) > 0 {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, errors.Join(indexErrs...))
	}

	if a.resolver != nil && len(all) > 0 {
		a.resolver.Enqueue(all)
	}
	return all, nil
}

// fetchDetails fans out one detail request per stub and waits for all of
// them. Results keep index order; failed requests are logged and omitted.
func (a *ListingAggregator) fetchDetails(ctx context.Context, scope string, stubs []domain.ProjectStub) []*domain.Project {
	results := make([]*domain.Project, len(stubs))

	var wg sync.WaitGroup
	for i, stub := range stubs {
		wg.Add(1)
		go func(i int, projectID string) {
			defer wg.Done()
			project, err := a.gateway.GetProjectDetails(ctx, scope, projectID)
			if err != nil {
				a.logger.Warn("project detail fetch failed",
					"scope", scope,
					"project_id", projectID,
					"error", err,
				)
				return
			}
			project.Scope = scope
			results[i] = project
		}(i, stub.ProjectID)
	}
	wg.Wait()

	projects := make([]*domain.Project, 0, len(stubs))
	for _, p := range results {
		if p != nil {
			projects = append(projects, p)
		}
	}
	a.logger.Info("projects loaded",
		"scope", scope,
		"requested", len(stubs),
		"loaded", len(projects),
	)
	return projects
}

// Preview produces the display summary line for a project card: the
// normalized first-document preview when documents exist, else the context,
// else a generated line.
func (a *ListingAggregator) Preview(ctx context.Context, project *domain.Project) string {
	if len(project.Documents) > 0 {
		return normalisers.DocumentPreview(project.Documents, project.ProjectID, cacheLookup{ctx: ctx, cache: a.cache})
	}
	if project.Context != "" {
		return normalisers.Clean(project.Context)
	}
	title := project.Title
	if title == "" {
		title = project.ProjectID
	}
	return fmt.Sprintf("Crisis analysis for %s with %d images analyzed", title, project.Metadata.ImageCount)
}

// cacheLookup adapts the content cache to the normaliser's read-only view.
type cacheLookup struct {
	ctx   context.Context
	cache driven.ContentCache
}

func (l cacheLookup) Lookup(projectID, docKey string) (string, bool) {
	if l.cache == nil {
		return "", false
	}
	return l.cache.Get(l.ctx, projectID, docKey)
}
