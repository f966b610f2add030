package model

import (
	"encoding/json"
	"errors"
	"strings"
)

// Role is the user's role as delivered by the authentication service.
// It only drives UI affordances; the scheduling service enforces access.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is a read-only account record returned at login and by GET /user.
type User struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	CreatedOn  string `json:"createdOn,omitempty"`
	ModifiedOn string `json:"modifiedOn,omitempty"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return strings.EqualFold(string(u.Role), string(RoleAdmin)) }

// UnmarshalJSON accepts the legacy "userId" key as an alias for "id".
func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var aux struct {
		plain
		UserID ID `json:"userId"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.ID == "" {
		u.ID = aux.UserID
	}
	return nil
}

// ErrInvalidUser is returned by Validate for structurally unusable records.
var ErrInvalidUser = errors.New("invalid user record")

// Validate checks the minimum structure required to treat a decoded
// record as a user.
func (u User) Validate() error {
	if u.ID == "" {
		return ErrInvalidUser
	}
	switch Role(strings.ToLower(string(u.Role))) {
	case RoleAdmin, RoleUser, "":
		return nil
	}
	return ErrInvalidUser
}
