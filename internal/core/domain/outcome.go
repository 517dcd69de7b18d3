package domain

import "strings"

// UploadPhase is the lifecycle phase of one submission attempt.
type UploadPhase string

const (
	PhaseIdle       UploadPhase = "idle"
	PhaseProcessing UploadPhase = "processing"
	PhaseSucceeded  UploadPhase = "succeeded"
	PhaseFailed     UploadPhase = "failed"
)

// Terminal reports whether the phase ends the attempt.
func (p UploadPhase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// UploadOutcome is the tagged state of the upload workflow. Exactly one of
// Destination (Succeeded) or Message (Failed) is meaningful; Idle and
// Processing carry neither. Impossible flag combinations cannot be
// represented.
type UploadOutcome struct {
	Phase       UploadPhase
	AttemptID   string
	Destination Destination // set when Phase == PhaseSucceeded
	Message     string      // set when Phase == PhaseFailed
}

// Idle is the zero outcome before any submission.
func Idle() UploadOutcome {
	return UploadOutcome{Phase: PhaseIdle}
}

// Processing marks a submission attempt in flight.
func Processing(attemptID string) UploadOutcome {
	return UploadOutcome{Phase: PhaseProcessing, AttemptID: attemptID}
}

// Succeeded carries the derived navigation destination.
func Succeeded(attemptID string, dest Destination) UploadOutcome {
	return UploadOutcome{Phase: PhaseSucceeded, AttemptID: attemptID, Destination: dest}
}

// Failed carries the human-readable failure message.
func Failed(attemptID, message string) UploadOutcome {
	return UploadOutcome{Phase: PhaseFailed, AttemptID: attemptID, Message: message}
}

// DestinationKind distinguishes where the shell should navigate after a
// successful upload.
type DestinationKind string

const (
	// DestinationProject points at a single project detail view.
	DestinationProject DestinationKind = "project"
	// DestinationListing is the fallback listing view when no project id
	// could be derived.
	DestinationListing DestinationKind = "listing"
)

// Destination is a navigation target derived from the backend response.
type Destination struct {
	Kind      DestinationKind
	Scope     string
	ProjectID string
}

// projectRefMarker delimits the project segment inside a composite database
// reference such as "USER#101#PROJECT#abc123".
const projectRefMarker = "#PROJECT#"

// AnalysisReceipt is the backend's response to an upload submission. The
// backend has returned several historical shapes; all recognized fields are
// optional.
type AnalysisReceipt struct {
	Status      string `json:"status"`
	DBReference string `json:"db_reference"`
	ProjectID   string `json:"project_id"`
	Message     string `json:"message"`
}

// Accepted reports whether the receipt satisfies the success predicate:
// an explicit success status or any project reference.
func (r AnalysisReceipt) Accepted() bool {
	return r.Status == "success" || r.DBReference != "" || r.ProjectID != ""
}

// DeriveDestination resolves the navigation target from the receipt. A
// composite db_reference wins over a direct project_id; when neither yields
// an id the destination falls back to the listing view.
func (r AnalysisReceipt) DeriveDestination(scope string) Destination {
	if r.DBReference != "" {
		if idx := strings.Index(r.DBReference, projectRefMarker); idx != -1 {
			id := r.DBReference[idx+len(projectRefMarker):]
			if id != "" {
				return Destination{Kind: DestinationProject, Scope: scope, ProjectID: id}
			}
		}
	}
	if r.ProjectID != "" {
		return Destination{Kind: DestinationProject, Scope: scope, ProjectID: r.ProjectID}
	}
	return Destination{Kind: DestinationListing, Scope: scope}
}
