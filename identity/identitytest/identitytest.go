// Package identitytest provides an in-memory identity.Provider for tests.
package identitytest

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/identity"
)

var _ identity.Provider = (*Fake)(nil)

type account struct {
	password string
	name     string
}

// A Fake keeps accounts and a single session in memory,
// recording every call made to it.
//
// Errors queued with FailSignIn and FailSignUp are returned by the next calls in order,
// before any accounts are looked at.
type Fake struct {
	mu         sync.Mutex
	accounts   map[string]account
	calls      []string
	session    *gatekeeper.Session
	getErr     error
	signInErrs []error
	signOutErr error
	signUpErrs []error
}

// NewFake constructs a *Fake without accounts or a session.
func NewFake() *Fake {
	return &Fake{accounts: make(map[string]account)}
}

// AddAccount registers an account the Fake signs in.
func (f *Fake) AddAccount(email, password, name string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[strings.ToLower(email)] = account{password: password, name: name}
	return f
}

// SetSession sets the session every request carries.
func (f *Fake) SetSession(s *gatekeeper.Session) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = s
	return f
}

// FailGetSession makes GetSession return err.
func (f *Fake) FailGetSession(err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = err
	return f
}

// FailSignIn queues errs for the next calls to SignIn.
func (f *Fake) FailSignIn(errs ...error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signInErrs = append(f.signInErrs, errs...)
	return f
}

// FailSignOut makes SignOut return err.
func (f *Fake) FailSignOut(err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutErr = err
	return f
}

// FailSignUp queues errs for the next calls to SignUp.
func (f *Fake) FailSignUp(errs ...error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUpErrs = append(f.signUpErrs, errs...)
	return f
}

// Calls lists the calls made so far, e.g., "signin a@x.com" or "signup a@x.com a".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Session returns the session the Fake is signed in as.
func (f *Fake) Session() *gatekeeper.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *Fake) GetSession(r *http.Request) (*gatekeeper.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "get-session")
	if f.getErr != nil {
		return nil, f.getErr
	}

	return f.session, nil
}

func (f *Fake) SignIn(w http.ResponseWriter, r *http.Request, c identity.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "signin "+c.Email)
	if err := pop(&f.signInErrs); err != nil {
		return err
	}

	email := strings.ToLower(c.Email)
	a, ok := f.accounts[email]
	if !ok || a.password != c.Password {
		return fmt.Errorf("%w: %s", identity.ErrInvalidCredentials, email)
	}

	f.session = &gatekeeper.Session{User: gatekeeper.SessionUser{ID: email, Email: email, Name: a.name}}
	return nil
}

func (f *Fake) SignUp(w http.ResponseWriter, r *http.Request, c identity.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "signup "+c.Email+" "+c.Name)
	if err := pop(&f.signUpErrs); err != nil {
		return err
	}

	email := strings.ToLower(c.Email)
	if _, ok := f.accounts[email]; ok {
		return fmt.Errorf("%w: %s", identity.ErrAccountExists, email)
	}

	f.accounts[email] = account{password: c.Password, name: c.Name}
	f.session = &gatekeeper.Session{User: gatekeeper.SessionUser{ID: email, Email: email, Name: c.Name}}
	return nil
}

func (f *Fake) SignOut(w http.ResponseWriter, r *http.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "signout")
	if f.signOutErr != nil {
		return f.signOutErr
	}

	f.session = nil
	return nil
}

func pop(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}

	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}
