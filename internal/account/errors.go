// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package account

import "errors"

// Error codes attached to store failures.
const (
	CodeDuplicateEmail    = "ACCOUNT_DUPLICATE_EMAIL"
	CodeDuplicateUsername = "ACCOUNT_DUPLICATE_USERNAME"
)

var (
	// ErrDuplicateEmail is returned when another account already uses the email.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicateUsername is returned when another account already uses the username.
	ErrDuplicateUsername = errors.New("username already registered")
)
