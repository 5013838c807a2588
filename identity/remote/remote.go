package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/identity"
)

const (
	getSessionPath = "/api/auth/get-session"
	signInPath     = "/api/auth/sign-in/email"
	signOutPath    = "/api/auth/sign-out"
	signUpPath     = "/api/auth/sign-up/email"

	codeUserExists = "USER_ALREADY_EXISTS"
	maxBodyBytes   = 1 << 20
)

var _ identity.Provider = (*Provider)(nil)

// forwardedHeaders identify the caller to the identity service.
var forwardedHeaders = []string{"Authorization", "Cookie", "Origin"}

// A Provider delegates accounts and sessions to a Better Auth compatible service over HTTP.
//
// Cookies the service sets are copied onto gatekeeper's responses,
// so the browser holds the service's session directly.
type Provider struct {
	base   *url.URL
	client *http.Client
}

// A ProviderOpt configures a *Provider.
type ProviderOpt func(*Provider)

// WithHTTPClient replaces the *http.Client requests are made with.
func WithHTTPClient(c *http.Client) ProviderOpt {
	return func(p *Provider) {
		if c != nil {
			p.client = c
		}
	}
}

// WithTimeout bounds how long a call to the identity service may take.
// By default calls are not bounded.
func WithTimeout(d time.Duration) ProviderOpt {
	return func(p *Provider) {
		c := *p.client
		c.Timeout = d
		p.client = &c
	}
}

// NewProvider constructs a *Provider for the identity service at baseURL.
func NewProvider(baseURL string, opts ...ProviderOpt) (*Provider, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: identity url: %s", gatekeeper.ErrBadConfig, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: identity url %q must be absolute", gatekeeper.ErrBadConfig, baseURL)
	}

	p := &Provider{base: u, client: new(http.Client)}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

type sessionBody struct {
	User *struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

// errorBody is how the service describes a failed call.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GetSession asks the service for the session the request's cookies or bearer token carry.
func (p *Provider) GetSession(r *http.Request) (*gatekeeper.Session, error) {
	res, err := p.do(r.Context(), r, http.MethodGet, getSessionPath, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return nil, nil
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: get session: status %d", identity.ErrUnavailable, res.StatusCode)
	}

	// NOTE: the service answers "null" when there is no session
	var body *sessionBody
	if err := json.NewDecoder(io.LimitReader(res.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: get session: %s", identity.ErrUnavailable, err)
	}

	if body == nil || body.User == nil {
		return nil, nil
	}

	return &gatekeeper.Session{User: gatekeeper.SessionUser{
		ID:    body.User.ID,
		Email: body.User.Email,
		Name:  body.User.Name,
	}}, nil
}

// SignIn signs in with email and password.
func (p *Provider) SignIn(w http.ResponseWriter, r *http.Request, c identity.Credentials) error {
	body := map[string]string{"email": c.Email, "password": c.Password}
	return p.call(w, r, signInPath, body)
}

// SignUp creates an account with email, password and name.
// The service signs the new account in.
func (p *Provider) SignUp(w http.ResponseWriter, r *http.Request, c identity.Credentials) error {
	body := map[string]string{"email": c.Email, "password": c.Password, "name": c.Name}
	return p.call(w, r, signUpPath, body)
}

// SignOut ends the service's session.
func (p *Provider) SignOut(w http.ResponseWriter, r *http.Request) error {
	return p.call(w, r, signOutPath, struct{}{})
}

func (p *Provider) call(w http.ResponseWriter, r *http.Request, path string, body any) error {
	res, err := p.do(r.Context(), r, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	for _, c := range res.Header.Values("Set-Cookie") {
		w.Header().Add("Set-Cookie", c)
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}

	var eb errorBody
	// An undecodable error body still fails the call by its status.
	_ = json.NewDecoder(io.LimitReader(res.Body, maxBodyBytes)).Decode(&eb)

	switch {
	case eb.Code == codeUserExists:
		return &identity.Error{Msg: eb.Message, Err: identity.ErrAccountExists}
	case res.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s: status %d", identity.ErrUnavailable, path, res.StatusCode)
	default:
		return &identity.Error{Msg: eb.Message, Err: identity.ErrInvalidCredentials}
	}
}

func (p *Provider) do(ctx context.Context, r *http.Request, method, path string, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", gatekeeper.ErrUnexpected, err)
		}
		rdr = bytes.NewReader(b)
	}

	u := p.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", gatekeeper.ErrUnexpected, err)
	}

	for _, h := range forwardedHeaders {
		if v := r.Header.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}

	if req.Header.Get("Origin") == "" {
		req.Header.Set("Origin", p.base.Scheme+"://"+p.base.Host)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", identity.ErrUnavailable, err)
	}

	return res, nil
}
