package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

var _ Store = (*InMemory)(nil)

// InMemory implements Store with in-process concurrency safety. It backs
// handler tests and local development without Postgres.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	byEmail  map[string]string
	sessions map[string]string // account id -> live fingerprint
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		accounts: make(map[string]*Account),
		byEmail:  make(map[string]string),
		sessions: make(map[string]string),
	}
}

func (s *InMemory) Accounts() AccountStore { return (*memAccounts)(s) }
func (s *InMemory) Sessions() SessionStore { return (*memSessions)(s) }

type memAccounts InMemory

func (s *memAccounts) Create(ctx context.Context, a *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(a.Email)
	if _, ok := s.byEmail[key]; ok {
		return fmt.Errorf("%w: email already registered", ErrAlreadyExists)
	}
	now := time.Now().UTC()
	stored := cloneAccount(a)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.accounts[a.ID] = stored
	s.byEmail[key] = a.ID
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

func (s *memAccounts) Find(ctx context.Context, id string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAccount(a), nil
}

func (s *memAccounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAccount(s.accounts[id]), nil
}

func (s *memAccounts) Update(ctx context.Context, id string, upd AccountUpdate) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Email != nil {
		key := strings.ToLower(*upd.Email)
		if other, taken := s.byEmail[key]; taken && other != id {
			return nil, fmt.Errorf("%w: email already registered", ErrAlreadyExists)
		}
		delete(s.byEmail, strings.ToLower(a.Email))
		a.Email = *upd.Email
		s.byEmail[key] = id
	}
	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.SecretHash != nil {
		a.SecretHash = *upd.SecretHash
	}
	a.UpdatedAt = time.Now().UTC()
	return cloneAccount(a), nil
}

type memSessions InMemory

func (s *memSessions) Record(ctx context.Context, accountID, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[accountID] = fingerprint
	return nil
}

func (s *memSessions) IsActive(ctx context.Context, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fp := range s.sessions {
		if fp == fingerprint {
			return true, nil
		}
	}
	return false, nil
}

func (s *memSessions) Revoke(ctx context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, fp := range s.sessions {
		if fp == fingerprint {
			delete(s.sessions, id)
		}
	}
	return nil
}

func cloneAccount(a *Account) *Account {
	out := *a
	out.Roles = make([]RoleGrant, len(a.Roles))
	copy(out.Roles, a.Roles)
	return &out
}
