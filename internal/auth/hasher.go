// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher derives and checks password digests.
type PasswordHasher interface {
	// Hash returns a salted digest of password. Two calls never return the same digest.
	Hash(password string) (string, error)

	// Verify reports whether password matches digest.
	// Returns (false, nil) on mismatch and an error only for a malformed digest.
	Verify(password, digest string) (bool, error)
}

// maxPasswordBytes is the longest input bcrypt accepts. Longer passwords are
// cut to this length before hashing and verifying.
const maxPasswordBytes = 72

func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

// BcryptHasher implements PasswordHasher with bcrypt. The salt and cost are
// encoded in each digest, so Verify works for digests of any cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher for the given cost factor.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, oops.Code("AUTH_INVALID_HASH_COST").
			With("cost", cost).
			With("min", bcrypt.MinCost).
			With("max", bcrypt.MaxCost).
			Errorf("hash cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

// Cost returns the configured cost factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash returns a bcrypt digest of password. Only the first 72 bytes count.
func (h *BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(truncatePassword(password), h.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").With("cost", h.cost).Wrap(err)
	}
	return string(digest), nil
}

// Verify compares password against a bcrypt digest.
func (h *BcryptHasher) Verify(password, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), truncatePassword(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
}

var _ PasswordHasher = (*BcryptHasher)(nil)
