// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

// Package account defines the persisted identity record and the storage
// contract that enforces its uniqueness.
//
// # Uniqueness
//
// Email and username are unique across all accounts. The check is owned by
// the Store implementation: callers never look before they write, they call
// Create and inspect the returned error with errors.Is against
// ErrDuplicateEmail and ErrDuplicateUsername. When both values collide the
// store reports ErrDuplicateEmail.
//
// Whether "Alice@Example.com" and "alice@example.com" are the same identity
// is decided by Folding, which stores implementations apply to the unique
// key columns.
package account
