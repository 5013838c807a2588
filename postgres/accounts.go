package postgres

import (
	"context"
	"fmt"

	"github.com/xy-planning-network/gatekeeper"
)

// An AccountStore persists gatekeeper.Accounts in the accounts table.
// An AccountStore is safe for concurrent use.
type AccountStore struct {
	db *DB
}

// NewAccountStore constructs an *AccountStore querying db.
func NewAccountStore(db *DB) *AccountStore { return &AccountStore{db: db} }

// CreateAccount inserts a, storing its email normalized.
func (s *AccountStore) CreateAccount(ctx context.Context, a gatekeeper.Account) error {
	if a.ID == "" || a.Email == "" {
		return fmt.Errorf("%w: account needs an id and email", gatekeeper.ErrMissingData)
	}

	a.Email = gatekeeper.NormalizeEmail(a.Email)

	return s.db.WithContext(ctx).Create(&a)
}

// AccountByEmail retrieves the Account registered to email, compared case-insensitively.
func (s *AccountStore) AccountByEmail(ctx context.Context, email string) (gatekeeper.Account, error) {
	var a gatekeeper.Account
	err := s.db.WithContext(ctx).Where("email = ?", gatekeeper.NormalizeEmail(email)).First(&a)

	return a, err
}

// AccountByID retrieves the Account identified by id.
func (s *AccountStore) AccountByID(ctx context.Context, id string) (gatekeeper.Account, error) {
	var a gatekeeper.Account
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&a)

	return a, err
}
