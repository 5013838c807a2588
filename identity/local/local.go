package local

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/auth"
	"github.com/xy-planning-network/gatekeeper/http/session"
	"github.com/xy-planning-network/gatekeeper/identity"
	"golang.org/x/crypto/bcrypt"
)

var _ identity.Provider = (*Provider)(nil)

// A Provider signs users in as Accounts held in a gatekeeper.AccountStore.
// The signed in Account is remembered in the request's session.
//
// When configured with WithTokens, a bearer token identifies the Account instead
// of the session for callers who cannot hold cookies.
type Provider struct {
	accounts gatekeeper.AccountStore
	cost     int
	sessions session.SessionStorer
	tokens   auth.TokenAuthenticator
}

// A ProviderOpt configures a *Provider.
type ProviderOpt func(*Provider)

// WithCost sets the bcrypt cost passwords are hashed with.
func WithCost(cost int) ProviderOpt {
	return func(p *Provider) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			p.cost = cost
		}
	}
}

// WithTokens accepts bearer tokens the TokenAuthenticator verifies as sessions.
func WithTokens(tokens auth.TokenAuthenticator) ProviderOpt {
	return func(p *Provider) {
		p.tokens = tokens
	}
}

// NewProvider constructs a *Provider.
func NewProvider(accounts gatekeeper.AccountStore, sessions session.SessionStorer, opts ...ProviderOpt) *Provider {
	p := &Provider{
		accounts: accounts,
		cost:     bcrypt.DefaultCost,
		sessions: sessions,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// GetSession resolves the Account the request is signed in as.
//
// A request carrying a bearer token that does not verify has no session;
// it does not fall back to the session cookie.
func (p *Provider) GetSession(r *http.Request) (*gatekeeper.Session, error) {
	if p.tokens != nil {
		claims, err := p.tokens.AuthenticateRequest(r)
		switch {
		case errors.Is(err, auth.ErrNoToken):
		case err != nil:
			return nil, nil
		default:
			return p.account(r, claims.Subject)
		}
	}

	s, err := p.sessions.GetSession(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", identity.ErrUnavailable, err)
	}

	id, err := s.AccountID()
	if err != nil {
		return nil, nil
	}

	return p.account(r, id)
}

func (p *Provider) account(r *http.Request, id string) (*gatekeeper.Session, error) {
	a, err := p.accounts.AccountByID(r.Context(), id)
	switch {
	case errors.Is(err, gatekeeper.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %s", identity.ErrUnavailable, err)
	}

	return a.Session(), nil
}

// SignIn checks the password against the Account's and stores the Account in the session.
func (p *Provider) SignIn(w http.ResponseWriter, r *http.Request, c identity.Credentials) error {
	if c.Email == "" || c.Password == "" {
		return fmt.Errorf("%w: email and password are required", identity.ErrInvalidCredentials)
	}

	a, err := p.accounts.AccountByEmail(r.Context(), c.Email)
	switch {
	case errors.Is(err, gatekeeper.ErrNotExist):
		return fmt.Errorf("%w: %s", identity.ErrInvalidCredentials, err)
	case err != nil:
		return fmt.Errorf("%w: %s", identity.ErrUnavailable, err)
	}

	if err := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(c.Password)); err != nil {
		return fmt.Errorf("%w: password does not match", identity.ErrInvalidCredentials)
	}

	return p.register(w, r, a.ID)
}

// SignUp creates an Account and signs the user in as it.
func (p *Provider) SignUp(w http.ResponseWriter, r *http.Request, c identity.Credentials) error {
	if c.Email == "" || c.Password == "" {
		return &identity.Error{Msg: "Email and password are required", Err: identity.ErrInvalidCredentials}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), p.cost)
	if err != nil {
		// NOTE: bcrypt rejects passwords longer than 72 bytes
		return &identity.Error{Msg: "Password is too long", Err: fmt.Errorf("%w: %s", identity.ErrInvalidCredentials, err)}
	}

	a := gatekeeper.Account{
		ID:           uuid.NewString(),
		Email:        gatekeeper.NormalizeEmail(c.Email),
		Name:         strings.TrimSpace(c.Name),
		PasswordHash: hash,
	}

	err = p.accounts.CreateAccount(r.Context(), a)
	switch {
	case errors.Is(err, gatekeeper.ErrExists):
		return fmt.Errorf("%w: %s", identity.ErrAccountExists, err)
	case err != nil:
		return fmt.Errorf("%w: %s", identity.ErrUnavailable, err)
	}

	return p.register(w, r, a.ID)
}

// SignOut removes the Account from the session.
func (p *Provider) SignOut(w http.ResponseWriter, r *http.Request) error {
	s, err := p.sessions.GetSession(r)
	if err != nil {
		return fmt.Errorf("%w: %s", identity.ErrUnavailable, err)
	}

	if err := s.DeregisterAccount(w, r); err != nil {
		return fmt.Errorf("%w: %s", identity.ErrUnavailable, err)
	}

	return nil
}

func (p *Provider) register(w http.ResponseWriter, r *http.Request, id string) error {
	s, err := p.sessions.GetSession(r)
	if err != nil {
		return fmt.Errorf("%w: %s", identity.ErrUnavailable, err)
	}

	if err := s.RegisterAccount(w, r, id); err != nil {
		return fmt.Errorf("%w: %s", identity.ErrUnavailable, err)
	}

	return nil
}
