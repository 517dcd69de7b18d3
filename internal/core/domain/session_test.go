package domain

import "testing"

func TestSession_Valid(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		valid   bool
	}{
		{"token and user", Session{Token: "t", User: User{ID: "u1"}}, true},
		{"missing token", Session{User: User{ID: "u1"}}, false},
		{"missing user id", Session{Token: "t"}, false},
		{"empty", Session{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Valid(); got != tt.valid {
				t.Errorf("expected %t, got %t", tt.valid, got)
			}
		})
	}
}
