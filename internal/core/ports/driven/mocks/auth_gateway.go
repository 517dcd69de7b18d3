package mocks

import (
	"context"
	"fmt"

	"github.com/crisislab/newsroom-core/internal/core/domain"
)

// MockAuthGateway holds a fixed set of accounts for testing.
type MockAuthGateway struct {
	accounts map[string]string // email -> password
	users    map[string]domain.User
}

// NewMockAuthGateway creates an empty gateway.
func NewMockAuthGateway() *MockAuthGateway {
	return &MockAuthGateway{
		accounts: make(map[string]string),
		users:    make(map[string]domain.User),
	}
}

// AddAccount registers an account the gateway will accept.
func (m *MockAuthGateway) AddAccount(email, password string, user domain.User) {
	m.accounts[email] = password
	m.users[email] = user
}

func (m *MockAuthGateway) Register(ctx context.Context, email, password, fullName string) (*domain.Session, error) {
	if _, exists := m.accounts[email]; exists {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrAlreadyExists)
	}
	user := domain.User{ID: "user-" + email, FullName: fullName, Email: email}
	m.AddAccount(email, password, user)
	return &domain.Session{Token: "token-" + email, User: user}, nil
}

func (m *MockAuthGateway) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	stored, ok := m.accounts[email]
	if !ok || stored != password {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.Session{Token: "token-" + email, User: m.users[email]}, nil
}
