// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package account

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Preference is the playback format an account streams in.
type Preference string

// Supported playback formats.
const (
	PreferenceOpus Preference = "opus"
	PreferenceFlac Preference = "flac"
)

// DefaultPreference is assigned to every new account.
const DefaultPreference = PreferenceOpus

// ParsePreference converts a stored value into a Preference.
func ParsePreference(s string) (Preference, error) {
	switch p := Preference(strings.TrimSpace(s)); p {
	case PreferenceOpus, PreferenceFlac:
		return p, nil
	default:
		return "", oops.Code("ACCOUNT_INVALID_PREFERENCE").
			With("preference", s).
			Errorf("unknown preference %q", s)
	}
}

// Account is a registered user.
type Account struct {
	ID           ulid.ULID
	Username     string
	Email        string
	PasswordHash string
	Preference   Preference
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAccount builds an account ready to be stored. The ID and timestamps are
// assigned here and never change afterwards.
func NewAccount(username, email, passwordHash string) (*Account, error) {
	if username == "" {
		return nil, oops.Code("ACCOUNT_INVALID").Errorf("username cannot be empty")
	}
	if email == "" {
		return nil, oops.Code("ACCOUNT_INVALID").Errorf("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("ACCOUNT_INVALID").Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &Account{
		ID:           ulid.Make(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Preference:   DefaultPreference,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Folding derives the value a store uses to decide whether two identities
// collide.
type Folding struct {
	// CaseInsensitive treats identities that differ only in letter case as
	// the same identity.
	CaseInsensitive bool
}

// Key returns the uniqueness key for an email or username.
func (f Folding) Key(s string) string {
	if f.CaseInsensitive {
		return strings.ToLower(s)
	}
	return s
}

// Store persists accounts.
type Store interface {
	// Create stores a new account. It returns an error wrapping
	// ErrDuplicateEmail or ErrDuplicateUsername when the account collides
	// with an existing one; email collisions take precedence.
	Create(ctx context.Context, account *Account) error

	// FindByEmail returns the account registered with email.
	// It returns (nil, nil) when no account matches.
	FindByEmail(ctx context.Context, email string) (*Account, error)
}
