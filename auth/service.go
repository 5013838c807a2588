package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	defaultIssuer = "gatekeeper"
	defaultTTL    = 24 * time.Hour
)

// SessionClaims identify the account a bearer token was minted for.
// The account's ID is the token's subject.
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies HS256 bearer tokens.
//
// TokenService implements TokenAuthenticator.
type TokenService struct {
	issuer string
	key    []byte
	parser *jwt.Parser
	ttl    time.Duration
}

// A TokenServiceOpt configures a *TokenService.
type TokenServiceOpt func(*TokenService)

// WithIssuer sets the "iss" claim of minted tokens.
func WithIssuer(iss string) TokenServiceOpt {
	return func(s *TokenService) {
		if iss != "" {
			s.issuer = iss
		}
	}
}

// WithTTL sets how long minted tokens are valid.
func WithTTL(ttl time.Duration) TokenServiceOpt {
	return func(s *TokenService) {
		s.ttl = ttl
	}
}

// NewTokenService constructs a *TokenService signing with jwtKey.
func NewTokenService(jwtKey string, opts ...TokenServiceOpt) (*TokenService, error) {
	if jwtKey == "" {
		return nil, fmt.Errorf(`%w: jwtKey cannot be ""`, ErrNotValid)
	}

	s := &TokenService{
		issuer: defaultIssuer,
		key:    []byte(jwtKey),
		parser: &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}},
		ttl:    defaultTTL,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Mint signs a token for the account.
func (s *TokenService) Mint(id, email, name string) (string, error) {
	if id == "" || email == "" {
		return "", fmt.Errorf("%w: id and email are required", ErrNotValid)
	}

	now := time.Now()
	claims := SessionClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnexpected, err)
	}

	return signed, nil
}
