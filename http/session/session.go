package session

import (
	"net/http"

	gorilla "github.com/gorilla/sessions"
)

// keys used internal to specific implementations of different interfaces.
const (
	sessionKey        = "gatekeeper-session-gorilla"
	accountSessionKey = sessionKey + "-account"
)

// The Sessionable wraps methods for basic adding values to, deleting, and getting values from a session
// associated with an *http.Request and saving those to the session store.
type Sessionable interface {
	Delete(w http.ResponseWriter, r *http.Request) error
	Get(key string) any
	Save(w http.ResponseWriter, r *http.Request) error
	Set(w http.ResponseWriter, r *http.Request, key string, val any) error
}

// The AccountSessionable wraps methods for adding, removing, and retrieving
// the account a session is signed in as.
type AccountSessionable interface {
	DeregisterAccount(w http.ResponseWriter, r *http.Request) error
	RegisterAccount(w http.ResponseWriter, r *http.Request, id string) error
	AccountID() (string, error)
}

// The GateSessionable composes session's major interfaces.
type GateSessionable interface {
	FlashSessionable
	Sessionable
	AccountSessionable
}

// A Session provides all functionality for managing a fully featured session.
//
// Its functionality is implemented by lightly wrapping a gorilla.Session.
type Session struct {
	s *gorilla.Session
}

// NewSession constructs a new Session as an implementation of GateSessionable
// from a *gorilla.Session.
func NewSession(g *gorilla.Session) GateSessionable { return Session{s: g} }

// Delete removes a session by making the MaxAge negative.
func (s Session) Delete(w http.ResponseWriter, r *http.Request) error {
	s.s.Options.MaxAge = -1
	return s.Save(w, r)
}

// DeregisterAccount removes the account from the session.
func (s Session) DeregisterAccount(w http.ResponseWriter, r *http.Request) error {
	delete(s.s.Values, accountSessionKey)
	return s.Save(w, r)
}

// Flashes retrieves []Flash stored in the session.
func (s Session) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	raw := s.s.Flashes()
	fs := make([]Flash, 0)
	for _, r := range raw {
		f, ok := r.(Flash)
		if !ok {
			continue
		}

		fs = append(fs, f)
	}

	if len(fs) > 0 {
		// NOTE(dlk): Flashes are removed after they are accessed,
		// but the session needs to be saved for them to be finally removed
		if err := s.Save(w, r); err != nil {
			return nil
		}
	}

	return fs
}

// Get retrieves a value from the session according to the key passed in.
func (s Session) Get(key string) any {
	return s.s.Values[key]
}

// RegisterAccount stores the account's ID in the session.
func (s Session) RegisterAccount(w http.ResponseWriter, r *http.Request, id string) error {
	s.s.Values[accountSessionKey] = id
	return s.Save(w, r)
}

// Save wraps gorilla.Session.Save, saving the session in the request.
func (s Session) Save(w http.ResponseWriter, r *http.Request) error { return s.s.Save(r, w) }

// Set stores a value according to the key passed in on the session.
func (s Session) Set(w http.ResponseWriter, r *http.Request, key string, val any) error {
	s.s.Values[key] = val
	return s.Save(w, r)
}

// SetFlash stores the passed in Flash in the session.
func (s Session) SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error {
	s.s.AddFlash(flash)
	return s.Save(w, r)
}

// AccountID gets the account ID out of the session.
// An account ID is present in a session once the account signs in.
// If no account ID can be found, ErrNoAccount is returned.
//
// If the value stored in the session is not a string, ErrNotValid is returned and represents a programming error.
func (s Session) AccountID() (string, error) {
	raw, ok := s.s.Values[accountSessionKey]
	if !ok {
		return "", ErrNoAccount
	}

	val, ok := raw.(string)
	if !ok || val == "" {
		return "", ErrNotValid
	}

	return val, nil
}
