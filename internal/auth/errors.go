// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package auth

import "errors"

// Error codes returned by Service.
const (
	CodeValidationFailed   = "AUTH_VALIDATION_FAILED"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeInvalidToken       = "AUTH_INVALID_TOKEN"
	CodeSignupFailed       = "AUTH_SIGNUP_FAILED"
	CodeSigninFailed       = "AUTH_SIGNIN_FAILED"
)

// Messages safe to show clients.
const (
	MsgDuplicateEmail     = "User with given email already exists."
	MsgDuplicateUsername  = "User with given username already exists."
	MsgInvalidCredentials = "Invalid credentials."
	MsgInvalidToken       = "Invalid token."
	MsgUserCreated        = "User created."
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned for malformed, forged or expired tokens.
	ErrInvalidToken = errors.New("invalid token")
)
