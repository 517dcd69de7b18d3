package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crisislab/newsroom-core/internal/core/domain"
	"github.com/crisislab/newsroom-core/internal/core/ports/driven"
	"github.com/crisislab/newsroom-core/internal/core/ports/driving"
)

// Ensure UploadWorkflow implements UploadService
var _ driving.UploadService = (*UploadWorkflow)(nil)

// defaultDisplayDelay is how long the success state is held before the
// derived destination is published. A UX contract, not a network wait.
const defaultDisplayDelay = 2500 * time.Millisecond

// UploadWorkflow drives one submission at a time through the
// Idle -> Processing -> Succeeded | Failed state machine. All failures are
// terminal for the attempt; resubmitting re-validates and re-enters
// Processing.
type UploadWorkflow struct {
	gateway      driven.AnalysisGateway
	displayDelay time.Duration
	logger       *slog.Logger

	mu        sync.Mutex
	state     domain.UploadOutcome
	observers []func(domain.UploadOutcome)
	timer     *time.Timer
	closed    bool

	nav chan domain.Destination
}

// UploadWorkflowConfig holds dependencies for the upload workflow.
type UploadWorkflowConfig struct {
	Gateway      driven.AnalysisGateway
	DisplayDelay time.Duration
	Logger       *slog.Logger
}

// NewUploadWorkflow creates an idle workflow.
func NewUploadWorkflow(cfg UploadWorkflowConfig) *UploadWorkflow {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	delay := cfg.DisplayDelay
	if delay <= 0 {
		delay = defaultDisplayDelay
	}
	return &UploadWorkflow{
		gateway:      cfg.Gateway,
		displayDelay: delay,
		logger:       logger,
		state:        domain.Idle(),
		nav:          make(chan domain.Destination, 1),
	}
}

// Submit validates and sends one submission, blocking until the attempt
// reaches a terminal state. The gateway call completes (success or failure)
// before the state machine leaves Processing.
func (w *UploadWorkflow) Submit(ctx context.Context, sub domain.Submission) (domain.UploadOutcome, error) {
	if err := sub.Validate(); err != nil {
		// Gate failure: no network call, state unchanged.
		return w.State(), err
	}

	attemptID := uuid.NewString()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return w.state, fmt.Errorf("%w: workflow closed", domain.ErrWorkflowBusy)
	}
	if w.state.Phase == domain.PhaseProcessing {
		state := w.state
		w.mu.Unlock()
		return state, domain.ErrWorkflowBusy
	}
	w.mu.Unlock()

	w.setState(domain.Processing(attemptID))
	w.logger.Info("submitting analysis",
		"attempt_id", attemptID,
		"scope", sub.Scope,
		"images", len(sub.Files.Images),
		"documents", len(sub.Files.Documents),
		"spreadsheet", sub.Files.Spreadsheet != nil,
	)

	receipt, err := w.gateway.SubmitAnalysis(ctx, sub)
	if err != nil {
		out := domain.Failed(attemptID, err.Error())
		w.setState(out)
		w.logger.Warn("submission failed", "attempt_id", attemptID, "error", err)
		return out, err
	}

	if !receipt.Accepted() {
		msg := receipt.Message
		if msg == "" {
			msg = "upload completed but response format is unexpected"
		}
		out := domain.Failed(attemptID, msg)
		w.setState(out)
		w.logger.Warn("submission rejected", "attempt_id", attemptID, "message", msg)
		return out, fmt.Errorf("%w: %s", domain.ErrUploadFailed, msg)
	}

	dest := receipt.DeriveDestination(sub.Scope)
	out := domain.Succeeded(attemptID, dest)
	w.setState(out)
	w.scheduleNavigation(dest)
	w.logger.Info("submission succeeded",
		"attempt_id", attemptID,
		"destination", string(dest.Kind),
		"project_id", dest.ProjectID,
	)
	return out, nil
}

// State returns the current outcome snapshot.
func (w *UploadWorkflow) State() domain.UploadOutcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Subscribe registers an observer invoked on every state transition.
func (w *UploadWorkflow) Subscribe(fn func(domain.UploadOutcome)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observers = append(w.observers, fn)
}

// Navigations delivers the destination once the post-success display delay
// has elapsed.
func (w *UploadWorkflow) Navigations() <-chan domain.Destination {
	return w.nav
}

// Close cancels any pending post-success timer so that tearing the workflow
// down mid-delay does not navigate. Safe to call more than once.
func (w *UploadWorkflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *UploadWorkflow) setState(out domain.UploadOutcome) {
	w.mu.Lock()
	w.state = out
	observers := make([]func(domain.UploadOutcome), len(w.observers))
	copy(observers, w.observers)
	w.mu.Unlock()

	for _, fn := range observers {
		fn(out)
	}
}

func (w *UploadWorkflow) scheduleNavigation(dest domain.Destination) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.displayDelay, func() {
		w.mu.Lock()
		closed := w.closed
		w.mu.Unlock()
		if closed {
			return
		}
		// Drop any stale unconsumed destination before publishing.
		select {
		case <-w.nav:
		default:
		}
		select {
		case w.nav <- dest:
		default:
		}
	})
}
