package driven

import (
	"context"

	"github.com/crisislab/newsroom-core/internal/core/domain"
)

// AuthGateway wraps the backend's register and login operations.
type AuthGateway interface {
	// Register creates an account and returns the issued session.
	Register(ctx context.Context, email, password, fullName string) (*domain.Session, error)

	// Login exchanges credentials for a session. Wrong credentials wrap
	// domain.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*domain.Session, error)
}
