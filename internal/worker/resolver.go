package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/crisislab/newsroom-core/internal/core/domain"
	"github.com/crisislab/newsroom-core/internal/core/ports/driven"
)

// unavailableTemplate is cached in place of a body that could not be
// fetched, so the same dead reference is not retried every listing.
const unavailableTemplate = "Unable to load content from %s. Document may be restricted or unavailable."

// task identifies one remote document body to resolve.
type task struct {
	projectID string
	docKey    string
	url       string
}

// ContentResolver resolves legacy remote document references in the
// background. Listings enqueue whole project batches; the resolver scans
// them for legacy documents whose value is a remote reference, fetches each
// body once, and writes it to the content cache. Resolution never surfaces
// errors to callers; failures are cached as a placeholder body.
type ContentResolver struct {
	fetcher driven.ContentFetcher
	cache   driven.ContentCache
	logger  *slog.Logger

	concurrency int
	queue       chan task

	// inFlight dedupes keys between enqueue and cache write.
	mu       sync.Mutex
	inFlight map[string]struct{}

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// ContentResolverConfig holds configuration for the resolver.
type ContentResolverConfig struct {
	Fetcher     driven.ContentFetcher
	Cache       driven.ContentCache
	Logger      *slog.Logger
	Concurrency int // number of concurrent fetchers
	QueueSize   int // pending task capacity before enqueues are dropped
}

// NewContentResolver creates a stopped resolver.
func NewContentResolver(cfg ContentResolverConfig) *ContentResolver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	return &ContentResolver{
		fetcher:     cfg.Fetcher,
		cache:       cfg.Cache,
		logger:      logger,
		concurrency: concurrency,
		queue:       make(chan task, queueSize),
		inFlight:    make(map[string]struct{}),
	}
}

// Start begins the resolver goroutines. It runs until Stop is called or the
// context is cancelled.
func (r *ContentResolver) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.mu.Unlock()

	r.logger.Info("content resolver starting", "concurrency", r.concurrency)

	var wg sync.WaitGroup
	for i := 0; i < r.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.resolveLoop(ctx, workerID)
		}(i)
	}

	go func() {
		wg.Wait()
		close(r.doneCh)
	}()

	return nil
}

// Stop gracefully stops the resolver. Queued tasks are discarded.
func (r *ContentResolver) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	close(r.stopCh)
	r.mu.Unlock()

	<-r.doneCh

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	r.logger.Info("content resolver stopped")
}

// Enqueue scans projects for unresolved remote document references and
// queues them. It never blocks; when the queue is full the overflow is
// dropped and picked up by the next listing.
func (r *ContentResolver) Enqueue(projects []*domain.Project) {
	for _, project := range projects {
		for _, doc := range project.Documents {
			if !doc.IsLegacy() || doc.LegacyValue.Kind != domain.LegacyValueRemote {
				continue
			}
			t := task{
				projectID: project.ProjectID,
				docKey:    doc.LegacyKey,
				url:       doc.LegacyValue.Text,
			}
			if !r.claim(t) {
				continue
			}
			select {
			case r.queue <- t:
			default:
				r.release(t)
				r.logger.Warn("resolver queue full, dropping task",
					"project_id", t.projectID,
					"doc_key", t.docKey,
				)
			}
		}
	}
}

// claim marks a key in flight. It returns false when the key is already in
// flight or already cached.
func (r *ContentResolver) claim(t task) bool {
	key := t.projectID + "\x00" + t.docKey
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inFlight[key]; ok {
		return false
	}
	if r.cache.Contains(context.Background(), t.projectID, t.docKey) {
		return false
	}
	r.inFlight[key] = struct{}{}
	return true
}

func (r *ContentResolver) release(t task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, t.projectID+"\x00"+t.docKey)
}

func (r *ContentResolver) resolveLoop(ctx context.Context, workerID int) {
	logger := r.logger.With("worker_id", workerID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case t := <-r.queue:
			r.resolve(ctx, t, logger)
		}
	}
}

// resolve fetches one body and writes it through SetOnce. A fetch failure
// caches a placeholder instead, keeping the write-once invariant and
// preventing retry storms against dead references.
func (r *ContentResolver) resolve(ctx context.Context, t task, logger *slog.Logger) {
	defer r.release(t)

	content, err := r.fetcher.FetchText(ctx, t.url)
	if err != nil {
		logger.Warn("document content fetch failed",
			"project_id", t.projectID,
			"doc_key", t.docKey,
			"url", t.url,
			"error", err,
		)
		content = fmt.Sprintf(unavailableTemplate, t.docKey)
	}

	created, err := r.cache.SetOnce(ctx, t.projectID, t.docKey, content)
	if err != nil {
		logger.Error("content cache write failed",
			"project_id", t.projectID,
			"doc_key", t.docKey,
			"error", err,
		)
		return
	}
	if created {
		logger.Info("document content resolved",
			"project_id", t.projectID,
			"doc_key", t.docKey,
			"bytes", len(content),
		)
	}
}
