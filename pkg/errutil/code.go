// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

// Package errutil reads and asserts on oops error codes and context.
package errutil

import "github.com/samber/oops"

// Code returns the oops code attached to err, or "" when err carries none.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// HasCode reports whether err carries the given oops code.
func HasCode(err error, code string) bool {
	return err != nil && Code(err) == code
}

// Public returns the user-facing message attached with oops Public, or
// fallback when err carries none.
func Public(err error, fallback string) string {
	return oops.GetPublic(err, fallback)
}
