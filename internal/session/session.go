// Package session owns the browser's authentication state: the bearer
// token and user record returned at login, persisted under the fixed
// names "token" and "user" in a pluggable Storage and rehydrated on every
// request.  Persisted records are untrusted on load.
package session

import (
	"github.com/mazenolama/Aljabr-Task/internal/model"
)

// Fixed record names inside a session scope.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Session is the authentication state of one browser.  The zero value
// (apart from Scope) is the logged-out state.
type Session struct {
	Scope string
	User  *model.User
	Token string
}

// Authenticated reports whether the session carries a usable login.
func (s Session) Authenticated() bool { return s.Token != "" && s.User != nil }

// IsAdmin reports whether the logged-in user has the admin role.  This is
// a UI affordance only; the scheduling service rejects unauthorized
// mutations on its own.
func (s Session) IsAdmin() bool { return s.Authenticated() && s.User.IsAdmin() }

// UserID returns the logged-in user's id or "".
func (s Session) UserID() model.ID {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// DisplayName returns the user's name, falling back to the email.
func (s Session) DisplayName() string {
	if s.User == nil {
		return ""
	}
	if s.User.Name != "" {
		return s.User.Name
	}
	return s.User.Email
}
