package services

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisislab/newsroom-core/internal/core/domain"
	"github.com/crisislab/newsroom-core/internal/core/ports/driven/mocks"
)

func newTestAuthService(t *testing.T) (*mocks.MockAuthGateway, *mocks.MockCredentialStore, *authService) {
	t.Helper()
	gateway := mocks.NewMockAuthGateway()
	store := mocks.NewMockCredentialStore()
	svc := NewAuthService(gateway, store, "", "", nil).(*authService)
	return gateway, store, svc
}

func TestAuthService_RegisterPersistsSession(t *testing.T) {
	_, store, svc := newTestAuthService(t)

	session, err := svc.Register(context.Background(), "ada@example.com", "pw", "Ada Lovelace")
	require.NoError(t, err)
	assert.True(t, session.Valid())

	token, err := store.Get(DefaultTokenKey)
	require.NoError(t, err)
	assert.Equal(t, session.Token, token)

	userJSON, err := store.Get(DefaultUserKey)
	require.NoError(t, err)
	assert.Contains(t, userJSON, "Ada Lovelace")
}

func TestAuthService_LoginWrongCredentials(t *testing.T) {
	gateway, store, svc := newTestAuthService(t)
	gateway.AddAccount("ada@example.com", "pw", domain.User{ID: "u1", Email: "ada@example.com"})

	_, err := svc.Login(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Nothing persisted on failure
	_, err = store.Get(DefaultTokenKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, svc.Authenticated())
}

func TestAuthService_LoginThenCurrent(t *testing.T) {
	gateway, _, svc := newTestAuthService(t)
	gateway.AddAccount("ada@example.com", "pw", domain.User{ID: "u1", FullName: "Ada", Email: "ada@example.com"})

	_, err := svc.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)

	session, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, "u1", session.User.ID)
	assert.True(t, svc.Authenticated())
}

func TestAuthService_LogoutClearsBothRecords(t *testing.T) {
	gateway, store, svc := newTestAuthService(t)
	gateway.AddAccount("ada@example.com", "pw", domain.User{ID: "u1"})

	_, err := svc.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Logout())

	_, err = store.Get(DefaultTokenKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Get(DefaultUserKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, svc.Authenticated())
}

func TestAuthService_CurrentWithoutToken(t *testing.T) {
	_, _, svc := newTestAuthService(t)

	_, ok := svc.Current()
	assert.False(t, ok)
	assert.False(t, svc.Authenticated())
}

func TestAuthService_RecoversIdentityFromToken(t *testing.T) {
	_, store, svc := newTestAuthService(t)

	// Token present but the user record is gone, as happens when only one
	// of the two keys survives.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":   "u42",
		"full_name": "Grace Hopper",
		"email":     "grace@example.com",
	}).SignedString([]byte("irrelevant"))
	require.NoError(t, err)
	require.NoError(t, store.Set(DefaultTokenKey, token))

	session, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, "u42", session.User.ID)
	assert.Equal(t, "Grace Hopper", session.User.FullName)
	assert.Equal(t, "grace@example.com", session.User.Email)
	assert.True(t, svc.Authenticated())
}

func TestAuthService_RecoversFromSubClaim(t *testing.T) {
	_, store, svc := newTestAuthService(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u7",
		"name": "Sub Claim",
	}).SignedString([]byte("irrelevant"))
	require.NoError(t, err)
	require.NoError(t, store.Set(DefaultTokenKey, token))

	session, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, "u7", session.User.ID)
	assert.Equal(t, "Sub Claim", session.User.FullName)
}

func TestAuthService_UnrecoverableToken(t *testing.T) {
	_, store, svc := newTestAuthService(t)
	require.NoError(t, store.Set(DefaultTokenKey, "not-a-jwt"))

	_, ok := svc.Current()
	assert.False(t, ok)
	assert.False(t, svc.Authenticated())
}

func TestAuthService_CustomStorageKeys(t *testing.T) {
	gateway := mocks.NewMockAuthGateway()
	store := mocks.NewMockCredentialStore()
	svc := NewAuthService(gateway, store, "custom_token", "custom_user", nil)

	_, err := svc.Register(context.Background(), "ada@example.com", "pw", "Ada")
	require.NoError(t, err)

	_, err = store.Get("custom_token")
	assert.NoError(t, err)
	_, err = store.Get(DefaultTokenKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
