// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

// Package auth implements account signup and signin.
//
// # Components
//
//   - PasswordHasher - bcrypt digests with a configured cost factor
//   - TokenIssuer - HS256 bearer tokens carrying the account id, username and email
//   - Service - the signup and signin flows over an account.Store
//
// Constructors validate their configuration: an out-of-range cost or an empty
// signing secret is an error at startup, never a runtime surprise.
//
// # Errors
//
// Service methods return oops errors. The code says what happened and the
// public message is safe to show a client; anything else is internal and
// must only be logged.
package auth
