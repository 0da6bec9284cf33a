// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

// Package httpapi exposes the account service over HTTP with JSON bodies.
//
// Routes:
//
//	GET  /                   liveness, always 200
//	POST /api/users/signup   create an account, 201
//	POST /api/users/signin   check credentials, 200
//	GET  /api/users/me       identity behind a bearer token, 200
//
// Any other path answers 404 {"message":"Could not find route"}. Every error
// body has the shape {"message": "..."}.
package httpapi
