// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

// Package memory provides an in-process account.Store.
package memory

import (
	"context"
	"sync"

	"github.com/samber/oops"

	"github.com/tonearm/accounts/internal/account"
)

// Store keeps accounts in memory. The mutex stands in for the unique
// indexes a database would hold, so concurrent creates observe the same
// single-winner behaviour.
type Store struct {
	folding account.Folding

	mu         sync.RWMutex
	byEmail    map[string]*account.Account
	byUsername map[string]*account.Account
}

// NewStore creates an empty Store.
func NewStore(folding account.Folding) *Store {
	return &Store{
		folding:    folding,
		byEmail:    make(map[string]*account.Account),
		byUsername: make(map[string]*account.Account),
	}
}

// Create stores a new account.
func (s *Store) Create(_ context.Context, acc *account.Account) error {
	emailKey := s.folding.Key(acc.Email)
	usernameKey := s.folding.Key(acc.Username)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[emailKey]; ok {
		return oops.Code(account.CodeDuplicateEmail).
			With("email", acc.Email).
			Wrap(account.ErrDuplicateEmail)
	}
	if _, ok := s.byUsername[usernameKey]; ok {
		return oops.Code(account.CodeDuplicateUsername).
			With("username", acc.Username).
			Wrap(account.ErrDuplicateUsername)
	}

	stored := *acc
	s.byEmail[emailKey] = &stored
	s.byUsername[usernameKey] = &stored
	return nil
}

// FindByEmail returns the account registered with email, or nil.
func (s *Store) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.byEmail[s.folding.Key(email)]
	if !ok {
		return nil, nil //nolint:nilnil // no match is a normal outcome
	}
	found := *stored
	return &found, nil
}

// Len reports how many accounts are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byEmail)
}

// Compile-time interface check.
var _ account.Store = (*Store)(nil)
