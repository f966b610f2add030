package session

import "fmt"

// AuthError is returned when the authentication service rejects a login.
// Message is shown on the login form.
type AuthError struct {
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// ParseError describes a persisted record that could not be used.  It is
// logged and self-healed by Restore, never shown to the user.
type ParseError struct {
	Record string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session record %q: %s: %v", e.Record, e.Reason, e.Err)
	}
	return fmt.Sprintf("session record %q: %s", e.Record, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }
