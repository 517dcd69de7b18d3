package driven

// CredentialStore is a durable key-value store for the auth token and the
// serialized user record, the client-side analogue of browser local storage.
// It is a convenience, not a security boundary.
type CredentialStore interface {
	// Set persists a value under a key, overwriting any previous value.
	Set(key, value string) error

	// Get returns the stored value, or domain.ErrNotFound.
	Get(key string) (string, error)

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error
}
