package local

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xy-planning-network/gatekeeper"
)

// A MemoryStore keeps Accounts in memory.
// It is safe for concurrent use and forgets everything when the process exits.
//
// MemoryStore implements gatekeeper.AccountStore.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]gatekeeper.Account
	byEmail map[string]string
}

// NewMemoryStore constructs an empty *MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]gatekeeper.Account),
		byEmail: make(map[string]string),
	}
}

func (m *MemoryStore) CreateAccount(ctx context.Context, a gatekeeper.Account) error {
	if a.ID == "" || a.Email == "" {
		return fmt.Errorf("%w: account requires an ID and email", gatekeeper.ErrMissingData)
	}

	email := gatekeeper.NormalizeEmail(a.Email)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[email]; ok {
		return fmt.Errorf("%w: account with email %s", gatekeeper.ErrExists, email)
	}

	if _, ok := m.byID[a.ID]; ok {
		return fmt.Errorf("%w: account with id %s", gatekeeper.ErrExists, a.ID)
	}

	now := time.Now()
	a.Email = email
	a.CreatedAt = now
	a.UpdatedAt = now
	m.byID[a.ID] = a
	m.byEmail[email] = a.ID

	return nil
}

func (m *MemoryStore) AccountByEmail(ctx context.Context, email string) (gatekeeper.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[gatekeeper.NormalizeEmail(email)]
	if !ok {
		return gatekeeper.Account{}, fmt.Errorf("%w: account with email %s", gatekeeper.ErrNotExist, email)
	}

	return m.byID[id], nil
}

func (m *MemoryStore) AccountByID(ctx context.Context, id string) (gatekeeper.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.byID[id]
	if !ok {
		return gatekeeper.Account{}, fmt.Errorf("%w: account with id %s", gatekeeper.ErrNotExist, id)
	}

	return a, nil
}
