package driving

import (
	"context"

	"github.com/crisislab/newsroom-core/internal/core/domain"
)

// AuthService manages the client-side session: backend login/register plus
// durable persistence of the token and user record.
type AuthService interface {
	Register(ctx context.Context, email, password, fullName string) (*domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)

	// Logout clears the persisted token and user record together.
	Logout() error

	// Current returns the persisted session, if one exists.
	Current() (*domain.Session, bool)

	// Authenticated reports whether both the token and a recoverable
	// user record are present.
	Authenticated() bool
}
