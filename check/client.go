package check

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xy-planning-network/gatekeeper"
)

const (
	credentialsPath = "/validate-admin"
	sessionPath     = "/validate-admin/session"
	maxResultBytes  = 1 << 16
)

// ErrTransport is a failure to reach a check or understand its answer.
var ErrTransport = errors.New("check transport failed")

// A Client calls the check endpoints of a gatekeeper over HTTP.
//
// The session check forwards the caller's Cookie and Authorization headers
// so the endpoint sees the caller's session.
type Client struct {
	base   *url.URL
	client *http.Client
}

// A ClientOpt configures a *Client.
type ClientOpt func(*Client)

// WithHTTPClient replaces the *http.Client checks are requested with.
func WithHTTPClient(c *http.Client) ClientOpt {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithTimeout bounds how long a check may take.
// By default checks are not bounded.
func WithTimeout(d time.Duration) ClientOpt {
	return func(cl *Client) {
		c := *cl.client
		c.Timeout = d
		cl.client = &c
	}
}

// NewClient constructs a *Client for the check endpoints served under baseURL.
func NewClient(baseURL string, opts ...ClientOpt) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: validator url: %s", gatekeeper.ErrBadConfig, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: validator url %q must be absolute", gatekeeper.ErrBadConfig, baseURL)
	}

	c := &Client{base: u, client: new(http.Client)}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ValidateCredentials posts email and password to /validate-admin.
func (c *Client) ValidateCredentials(r *http.Request, email, password string) (Result, error) {
	body, err := json.Marshal(credentialsBody{Email: email, Password: password})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", gatekeeper.ErrUnexpected, err)
	}

	return c.post(r, credentialsPath, body, nil)
}

// ValidateSession posts to /validate-admin/session as the caller.
func (c *Client) ValidateSession(r *http.Request) (Result, error) {
	return c.post(r, sessionPath, nil, []string{"Authorization", "Cookie"})
}

func (c *Client) post(r *http.Request, path string, body []byte, forward []string) (Result, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, c.base.JoinPath(path).String(), bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", gatekeeper.ErrUnexpected, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	for _, h := range forward {
		if v := r.Header.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}

	res, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrTransport, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Result{}, fmt.Errorf("%w: %s responded %d", ErrTransport, path, res.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(io.LimitReader(res.Body, maxResultBytes)).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("%w: decoding %s: %s", ErrTransport, path, err)
	}

	return result, nil
}
