package mocks

import (
	"context"
	"sync"

	"github.com/crisislab/newsroom-core/internal/core/domain"
)

// MockAnalysisGateway is a configurable in-memory AnalysisGateway for
// testing. Behaviour is overridden per operation; calls are recorded.
type MockAnalysisGateway struct {
	mu sync.Mutex

	SubmitFunc  func(ctx context.Context, sub domain.Submission) (*domain.AnalysisReceipt, error)
	ListFunc    func(ctx context.Context, scope string, limit int) ([]domain.ProjectStub, error)
	DetailsFunc func(ctx context.Context, scope, projectID string) (*domain.Project, error)

	SubmitCalls  []domain.Submission
	ListCalls    []string
	DetailsCalls []string
}

// NewMockAnalysisGateway creates a gateway whose operations succeed with
// empty results until overridden.
func NewMockAnalysisGateway() *MockAnalysisGateway {
	return &MockAnalysisGateway{}
}

func (m *MockAnalysisGateway) SubmitAnalysis(ctx context.Context, sub domain.Submission) (*domain.AnalysisReceipt, error) {
	m.mu.Lock()
	m.SubmitCalls = append(m.SubmitCalls, sub)
	fn := m.SubmitFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, sub)
	}
	return &domain.AnalysisReceipt{Status: "success"}, nil
}

func (m *MockAnalysisGateway) ListProjects(ctx context.Context, scope string, limit int) ([]domain.ProjectStub, error) {
	m.mu.Lock()
	m.ListCalls = append(m.ListCalls, scope)
	fn := m.ListFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, scope, limit)
	}
	return nil, nil
}

func (m *MockAnalysisGateway) GetProjectDetails(ctx context.Context, scope, projectID string) (*domain.Project, error) {
	m.mu.Lock()
	m.DetailsCalls = append(m.DetailsCalls, projectID)
	fn := m.DetailsFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, scope, projectID)
	}
	return &domain.Project{ProjectID: projectID}, nil
}

// SubmitCallCount returns how many submissions reached the gateway.
func (m *MockAnalysisGateway) SubmitCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SubmitCalls)
}
