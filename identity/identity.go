package identity

import (
	"errors"
	"net/http"

	"github.com/xy-planning-network/gatekeeper"
)

var (
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no session")
	ErrUnavailable        = errors.New("identity provider unavailable")
)

// Credentials are what a user submits to sign in or sign up.
// Name is only used when signing up.
type Credentials struct {
	Email    string
	Password string
	Name     string
}

//go:generate mockgen -destination=mock_identity/mock_identity.go github.com/xy-planning-network/gatekeeper/identity Provider

// A Provider owns accounts and the sessions signed in as them.
//
// gatekeeper never stores credentials or issues sessions itself:
// it reads the session a request carries through GetSession
// and asks the Provider to sign users in, up and out.
type Provider interface {
	// GetSession returns the session r carries or nil, nil when it carries none.
	GetSession(r *http.Request) (*gatekeeper.Session, error)

	// SignIn starts a session for the credentials, writing whatever cookies it needs to w.
	SignIn(w http.ResponseWriter, r *http.Request, c Credentials) error

	// SignUp creates an account for the credentials.
	SignUp(w http.ResponseWriter, r *http.Request, c Credentials) error

	// SignOut ends the session r carries.
	SignOut(w http.ResponseWriter, r *http.Request) error
}

// An Error is a failure a Provider reported with a message meant for users.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}

	return e.Err.Error() + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the user-facing message for err.
//
// A message an *Error carries wins over the defaults for sentinel errors.
// Message returns "" for errors that have nothing to tell users.
func Message(err error) string {
	var pe *Error
	if errors.As(err, &pe) && pe.Msg != "" {
		return pe.Msg
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrAccountExists):
		return "User already exists"
	default:
		return ""
	}
}
