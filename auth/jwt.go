package auth

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// AuthenticateJWT decodes the session claims from the "jwt" query param.
// If no token is set in the params, AuthenticateJWT returns ErrNoToken.
func (s *TokenService) AuthenticateJWT(v url.Values) (*SessionClaims, error) {
	reqToken := v.Get("jwt")
	if reqToken == "" {
		return nil, fmt.Errorf("no jwt param set: %w", ErrNoToken)
	}

	return s.parse(reqToken)
}

// AuthenticateRequest decodes the session claims from the request's
// "Authorization: Bearer" header, falling back to the "jwt" query param.
// If neither carries a token, AuthenticateRequest returns ErrNoToken.
func (s *TokenService) AuthenticateRequest(r *http.Request) (*SessionClaims, error) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if found && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != "" {
		return s.parse(strings.TrimSpace(token))
	}

	return s.AuthenticateJWT(r.URL.Query())
}

func (s *TokenService) parse(raw string) (*SessionClaims, error) {
	claims := new(SessionClaims)
	_, err := s.parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return s.key, nil
	})

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %s", ErrExpired, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %s", ErrNotValid, err)
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: token missing subject or email", ErrNotValid)
	}

	return claims, nil
}
