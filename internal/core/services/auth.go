package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"github.com/crisislab/newsroom-core/internal/core/domain"
	"github.com/crisislab/newsroom-core/internal/core/ports/driven"
	"github.com/crisislab/newsroom-core/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// Default storage key names, overridable via configuration.
const (
	DefaultTokenKey = "crisis_journalist_auth_token"
	DefaultUserKey  = "crisis_journalist_user_data"
)

// authService manages the client-side session. The token and user record
// are persisted together on login/register and cleared together on logout.
// Presence of both is the authentication predicate; no expiry is enforced
// client-side.
type authService struct {
	gateway  driven.AuthGateway
	creds    driven.CredentialStore
	tokenKey string
	userKey  string
	logger   *slog.Logger
}

// NewAuthService creates an AuthService persisting under the given storage
// keys (defaults apply when empty).
func NewAuthService(gateway driven.AuthGateway, creds driven.CredentialStore, tokenKey, userKey string, logger *slog.Logger) driving.AuthService {
	if tokenKey == "" {
		tokenKey = DefaultTokenKey
	}
	if userKey == "" {
		userKey = DefaultUserKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		gateway:  gateway,
		creds:    creds,
		tokenKey: tokenKey,
		userKey:  userKey,
		logger:   logger,
	}
}

// Register creates an account and persists the issued session.
func (s *authService) Register(ctx context.Context, email, password, fullName string) (*domain.Session, error) {
	session, err := s.gateway.Register(ctx, email, password, fullName)
	if err != nil {
		return nil, err
	}
	if err := s.persist(session); err != nil {
		return nil, err
	}
	s.logger.Info("registered", "email", email)
	return session, nil
}

// Login exchanges credentials for a session and persists it.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.persist(session); err != nil {
		return nil, err
	}
	s.logger.Info("logged in", "email", email)
	return session, nil
}

// Logout clears the persisted token and user record together.
func (s *authService) Logout() error {
	tokenErr := s.creds.Delete(s.tokenKey)
	userErr := s.creds.Delete(s.userKey)
	return errors.Join(tokenErr, userErr)
}

// Current returns the persisted session, if one exists. When the user
// record is missing or corrupt but a token is present, the display identity
// is recovered from the token's claims without verifying the signature or
// expiry; the presence-only predicate stays intact.
func (s *authService) Current() (*domain.Session, bool) {
	token, err := s.creds.Get(s.tokenKey)
	if err != nil || token == "" {
		return nil, false
	}

	session := &domain.Session{Token: token}
	if raw, err := s.creds.Get(s.userKey); err == nil {
		if err := json.Unmarshal([]byte(raw), &session.User); err != nil {
			s.logger.Warn("stored user record is corrupt", "error", err)
		}
	}
	if session.User.ID == "" {
		user, ok := userFromToken(token)
		if !ok {
			return nil, false
		}
		session.User = user
	}
	return session, true
}

// Authenticated reports whether both the token and a recoverable user
// record are present.
func (s *authService) Authenticated() bool {
	session, ok := s.Current()
	return ok && session.Valid()
}

func (s *authService) persist(session *domain.Session) error {
	userJSON, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}
	if err := s.creds.Set(s.tokenKey, session.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.creds.Set(s.userKey, string(userJSON)); err != nil {
		return fmt.Errorf("persist user record: %w", err)
	}
	return nil
}

// userFromToken decodes identity claims from an unverified JWT. The token
// is opaque to this client; decoding is best-effort recovery for display
// purposes only.
func userFromToken(token string) (domain.User, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.User{}, false
	}

	user := domain.User{
		ID:       claimString(claims, "user_id", "sub"),
		FullName: claimString(claims, "full_name", "name"),
		Email:    claimString(claims, "email"),
	}
	return user, user.ID != ""
}

func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
