package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/crisislab/newsroom-core/internal/core/domain"
	"github.com/crisislab/newsroom-core/internal/core/ports/driven/mocks"
)

func validSubmission() domain.Submission {
	return domain.Submission{
		Scope: "101",
		Form:  domain.UploadForm{Title: "Flood coverage"},
		Files: domain.FileBundle{
			Images: []domain.File{{Name: "a.jpg", ContentType: "image/jpeg"}},
		},
	}
}

func TestUploadWorkflow_ValidationGate(t *testing.T) {
	gateway := mocks.NewMockAnalysisGateway()
	w := NewUploadWorkflow(UploadWorkflowConfig{Gateway: gateway})
	defer w.Close()

	sub := validSubmission()
	sub.Form.Title = "  "

	_, err := w.Submit(context.Background(), sub)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if gateway.SubmitCallCount() != 0 {
		t.Error("gate failures must never reach the network")
	}
	if w.State().Phase != domain.PhaseIdle {
		t.Errorf("state must stay idle, got %s", w.State().Phase)
	}
}

func TestUploadWorkflow_Success(t *testing.T) {
	gateway := mocks.NewMockAnalysisGateway()
	gateway.SubmitFunc = func(ctx context.Context, sub domain.Submission) (*domain.AnalysisReceipt, error) {
		return &domain.AnalysisReceipt{Status: "success", DBReference: "USER#101#PROJECT#abc123"}, nil
	}

	w := NewUploadWorkflow(UploadWorkflowConfig{Gateway: gateway, DisplayDelay: 10 * time.Millisecond})
	defer w.Close()

	out, err := w.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Phase != domain.PhaseSucceeded {
		t.Fatalf("expected succeeded, got %s", out.Phase)
	}
	if out.Destination.Kind != domain.DestinationProject || out.Destination.ProjectID != "abc123" {
		t.Errorf("unexpected destination: %+v", out.Destination)
	}

	select {
	case dest := <-w.Navigations():
		if dest.ProjectID != "abc123" || dest.Scope != "101" {
			t.Errorf("unexpected navigation: %+v", dest)
		}
	case <-time.After(time.Second):
		t.Fatal("navigation never delivered")
	}
}

func TestUploadWorkflow_ListingFallback(t *testing.T) {
	gateway := mocks.NewMockAnalysisGateway()
	gateway.SubmitFunc = func(ctx context.Context, sub domain.Submission) (*domain.AnalysisReceipt, error) {
		return &domain.AnalysisReceipt{Status: "success"}, nil
	}

	w := NewUploadWorkflow(UploadWorkflowConfig{Gateway: gateway, DisplayDelay: 5 * time.Millisecond})
	defer w.Close()

	out, err := w.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Destination.Kind != domain.DestinationListing {
		t.Errorf("expected listing fallback, got %+v", out.Destination)
	}
}

func TestUploadWorkflow_GatewayError(t *testing.T) {
	gateway := mocks.NewMockAnalysisGateway()
	gateway.SubmitFunc = func(ctx context.Context, sub domain.Submission) (*domain.AnalysisReceipt, error) {
		return nil, errors.New("network down")
	}

	w := NewUploadWorkflow(UploadWorkflowConfig{Gateway: gateway})
	defer w.Close()

	out, err := w.Submit(context.Background(), validSubmission())
	if err == nil {
		t.Fatal("expected error")
	}
	if out.Phase != domain.PhaseFailed {
		t.Fatalf("expected failed, got %s", out.Phase)
	}
	if out.Message != "network down" {
		t.Errorf("failure message: %q", out.Message)
	}
}

func TestUploadWorkflow_UnrecognizedReceipt(t *testing.T) {
	gateway := mocks.NewMockAnalysisGateway()
	gateway.SubmitFunc = func(ctx context.Context, sub domain.Submission) (*domain.AnalysisReceipt, error) {
		return &domain.AnalysisReceipt{}, nil
	}

	w := NewUploadWorkflow(UploadWorkflowConfig{Gateway: gateway})
	defer w.Close()

	out, err := w.Submit(context.Background(), validSubmission())
	if !errors.Is(err, domain.ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	if out.Phase != domain.PhaseFailed {
		t.Errorf("expected failed, got %s", out.Phase)
	}
}

func TestUploadWorkflow_ResubmitAfterFailure(t *testing.T) {
	gateway := mocks.NewMockAnalysisGateway()
	fail := true
	gateway.SubmitFunc = func(ctx context.Context, sub domain.Submission) (*domain.AnalysisReceipt, error) {
		if fail {
			return nil, errors.New("first attempt fails")
		}
		return &domain.AnalysisReceipt{ProjectID: "p1"}, nil
	}

	w := NewUploadWorkflow(UploadWorkflowConfig{Gateway: gateway, DisplayDelay: 5 * time.Millisecond})
	defer w.Close()

	first, _ := w.Submit(context.Background(), validSubmission())
	if first.Phase != domain.PhaseFailed {
		t.Fatalf("expected first attempt failed, got %s", first.Phase)
	}

	fail = false
	second, err := w.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("resubmit must be allowed after failure: %v", err)
	}
	if second.Phase != domain.PhaseSucceeded {
		t.Fatalf("expected succeeded, got %s", second.Phase)
	}
	if second.AttemptID == first.AttemptID {
		t.Error("each attempt gets a fresh id")
	}
}

func TestUploadWorkflow_BusyGuard(t *testing.T) {
	gateway := mocks.NewMockAnalysisGateway()
	release := make(chan struct{})
	gateway.SubmitFunc = func(ctx context.Context, sub domain.Submission) (*domain.AnalysisReceipt, error) {
		<-release
		return &domain.AnalysisReceipt{ProjectID: "p1"}, nil
	}

	w := NewUploadWorkflow(UploadWorkflowConfig{Gateway: gateway, DisplayDelay: 5 * time.Millisecond})
	defer w.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = w.Submit(context.Background(), validSubmission())
	}()

	// Wait for the first attempt to enter processing.
	deadline := time.Now().Add(time.Second)
	for w.State().Phase != domain.PhaseProcessing {
		if time.Now().After(deadline) {
			t.Fatal("first attempt never entered processing")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := w.Submit(context.Background(), validSubmission())
	if !errors.Is(err, domain.ErrWorkflowBusy) {
		t.Fatalf("expected ErrWorkflowBusy, got %v", err)
	}

	close(release)
	<-done

	if gateway.SubmitCallCount() != 1 {
		t.Errorf("second submission must not reach the gateway, got %d calls", gateway.SubmitCallCount())
	}
}

func TestUploadWorkflow_CloseCancelsNavigation(t *testing.T) {
	gateway := mocks.NewMockAnalysisGateway()
	gateway.SubmitFunc = func(ctx context.Context, sub domain.Submission) (*domain.AnalysisReceipt, error) {
		return &domain.AnalysisReceipt{ProjectID: "p1"}, nil
	}

	w := NewUploadWorkflow(UploadWorkflowConfig{Gateway: gateway, DisplayDelay: 50 * time.Millisecond})

	if _, err := w.Submit(context.Background(), validSubmission()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Close()

	select {
	case dest := <-w.Navigations():
		t.Fatalf("closed workflow must not navigate, got %+v", dest)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestUploadWorkflow_SubmitAfterClose(t *testing.T) {
	w := NewUploadWorkflow(UploadWorkflowConfig{Gateway: mocks.NewMockAnalysisGateway()})
	w.Close()

	_, err := w.Submit(context.Background(), validSubmission())
	if !errors.Is(err, domain.ErrWorkflowBusy) {
		t.Fatalf("expected ErrWorkflowBusy, got %v", err)
	}
}

func TestUploadWorkflow_Observers(t *testing.T) {
	gateway := mocks.NewMockAnalysisGateway()
	gateway.SubmitFunc = func(ctx context.Context, sub domain.Submission) (*domain.AnalysisReceipt, error) {
		return &domain.AnalysisReceipt{ProjectID: "p1"}, nil
	}

	w := NewUploadWorkflow(UploadWorkflowConfig{Gateway: gateway, DisplayDelay: 5 * time.Millisecond})
	defer w.Close()

	var mu sync.Mutex
	var phases []domain.UploadPhase
	w.Subscribe(func(out domain.UploadOutcome) {
		mu.Lock()
		phases = append(phases, out.Phase)
		mu.Unlock()
	})

	if _, err := w.Submit(context.Background(), validSubmission()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(phases) != 2 || phases[0] != domain.PhaseProcessing || phases[1] != domain.PhaseSucceeded {
		t.Errorf("unexpected transition sequence: %v", phases)
	}
}
