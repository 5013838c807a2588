package gatekeeper

import (
	"context"
	"strings"
	"time"
)

// An Account is an email and password identity the local identity provider signs users in as.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Exists asserts whether the Account was persisted.
func (a Account) Exists() bool { return !a.CreatedAt.IsZero() }

// Session represents the Account as the session an identity provider resolves for it.
func (a Account) Session() *Session {
	return &Session{User: SessionUser{ID: a.ID, Email: a.Email, Name: a.Name}}
}

// NormalizeEmail lowercases and trims email so stored accounts match case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// An AccountStore persists Accounts.
//
// CreateAccount returns an error wrapping ErrExists when an Account with the same email already exists.
// AccountByEmail and AccountByID return an error wrapping ErrNotExist when nothing matches.
type AccountStore interface {
	CreateAccount(ctx context.Context, a Account) error
	AccountByEmail(ctx context.Context, email string) (Account, error)
	AccountByID(ctx context.Context, id string) (Account, error)
}
