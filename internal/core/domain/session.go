package domain

// User is the authenticated account identity returned by the backend.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Session is the client-side authentication state: an opaque token plus the
// user record, persisted together and cleared together. Presence of both is
// the sole authentication predicate; no expiry check is performed
// client-side.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Valid reports whether the session satisfies the authentication predicate.
func (s Session) Valid() bool {
	return s.Token != "" && s.User.ID != ""
}
