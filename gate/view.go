package gate

import (
	"errors"
	"net/url"

	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/http/req"
)

// Placeholders shown while the gate waits.
const (
	MsgLoading   = "Loading..."
	MsgVerifying = "Verifying access..."
)

// A LoginPage is the data the login template renders.
type LoginPage struct {
	Action      string
	Email       string
	Error       string
	Fields      map[string]string
	Mode        gatekeeper.Mode
	Next        string
	SignUp      bool
	Submit      string
	Subtitle    string
	Title       string
	ToggleLabel string
	ToggleURL   string
}

func newLoginPage(loginPath string, mode gatekeeper.Mode, next, email, msg string) LoginPage {
	mode = mode.Or(gatekeeper.SignIn)
	p := LoginPage{
		Action: loginPath,
		Email:  email,
		Error:  msg,
		Mode:   mode,
		Next:   next,
		SignUp: mode == gatekeeper.SignUp,
	}

	toggle := gatekeeper.SignUp
	if p.SignUp {
		p.Title = "Create Account"
		p.Subtitle = "Create an account to get started"
		p.Submit = "Sign Up"
		p.ToggleLabel = "Already have an account? Sign in"
		toggle = gatekeeper.SignIn
	} else {
		p.Title = "Sign In"
		p.Subtitle = "Sign in to continue"
		p.Submit = "Sign In"
		p.ToggleLabel = "Don't have an account? Sign up"
	}

	q := url.Values{"mode": {toggle.String()}}
	if next != "" {
		q.Set("next", next)
	}
	p.ToggleURL = loginPath + "?" + q.Encode()

	return p
}

type statusPage struct {
	Message string
}

// stateBody is how the gate answers callers wanting JSON.
type stateBody struct {
	State  State             `json:"state"`
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Notice string            `json:"notice,omitempty"`
}

// fieldMessages pulls the per-field messages out of a rejected login form, if err carries any.
func fieldMessages(err error) map[string]string {
	var fe req.FieldErrors
	if errors.As(err, &fe) {
		return fe.Messages()
	}

	return nil
}
