package auth

import (
	"net/http"
	"net/url"
)

// A TokenAuthenticator recovers the session claims carried by a bearer token.
type TokenAuthenticator interface {
	AuthenticateJWT(v url.Values) (*SessionClaims, error)
	AuthenticateRequest(r *http.Request) (*SessionClaims, error)
}
