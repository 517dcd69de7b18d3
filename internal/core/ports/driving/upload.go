package driving

import (
	"context"

	"github.com/crisislab/newsroom-core/internal/core/domain"
)

// UploadService drives the submit-for-analysis workflow. It owns a
// single-attempt state machine: Idle -> Processing -> Succeeded | Failed.
type UploadService interface {
	// Submit validates and sends one submission. Validation failures
	// return domain.ErrValidation without touching the network and leave
	// the state Idle. The returned outcome is the terminal state of the
	// attempt.
	Submit(ctx context.Context, sub domain.Submission) (domain.UploadOutcome, error)

	// State returns the current outcome snapshot.
	State() domain.UploadOutcome

	// Subscribe registers an observer invoked on every state transition.
	Subscribe(fn func(domain.UploadOutcome))

	// Navigations delivers the derived destination after the
	// post-success display delay has elapsed. Closing the workflow
	// mid-delay cancels the pending delivery.
	Navigations() <-chan domain.Destination

	// Close cancels any pending post-success timer. Safe to call more
	// than once.
	Close()
}
