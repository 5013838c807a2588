package gatekeeper

import (
	"fmt"
	"strings"
)

// A Mode is which account action a login form attempts first.
type Mode string

const (
	SignIn Mode = "signin"
	SignUp Mode = "signup"
)

func (m Mode) String() string { return string(m) }

// Valid asserts m is a known Mode.
// The zero value is not valid; use Or to default it.
func (m Mode) Valid() error {
	switch m {
	case SignIn, SignUp:
		return nil
	default:
		return fmt.Errorf("%w: mode %q", ErrNotValid, string(m))
	}
}

// Or returns m if valid and def otherwise.
func (m Mode) Or(def Mode) Mode {
	if m.Valid() != nil {
		return def
	}

	return m
}

// A LoginAttempt is one submission of the login form.
type LoginAttempt struct {
	Email    string `json:"email" schema:"email" validate:"required,email"`
	Password string `json:"password" schema:"password" validate:"required"`
	Name     string `json:"name,omitempty" schema:"name"`
	Mode     Mode   `json:"mode,omitempty" schema:"mode" validate:"omitempty,enum"`
	Next     string `json:"next,omitempty" schema:"next"`
}

// LocalPart returns the part of the email before "@".
func (la LoginAttempt) LocalPart() string {
	local, _, _ := strings.Cut(la.Email, "@")
	return local
}

// DerivedName returns the entered name or, if blank, the local part of the email.
func (la LoginAttempt) DerivedName() string {
	if name := strings.TrimSpace(la.Name); name != "" {
		return name
	}

	return la.LocalPart()
}
