// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

// Package validation checks signup and signin payloads against ordered rule
// schemas and reports the first rule that fails.
//
// Rules run field by field in schema order and stop at the first failure, so
// the message a client sees for a given payload is deterministic. Validation
// is pure: it never consults the account store.
package validation

import (
	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
)

// Kind selects the schema a payload is checked against.
type Kind int

const (
	// Signup is a new-account request.
	Signup Kind = iota + 1
	// Signin is a credential check for an existing account.
	Signin
)

func (k Kind) String() string {
	switch k {
	case Signup:
		return "signup"
	case Signin:
		return "signin"
	default:
		return "unknown"
	}
}

// Payload holds the fields a client actually sent. A key that is absent was
// not sent; a key mapped to "" was sent empty.
type Payload map[string]string

// Result is the outcome of a validation run. The zero value means the
// payload passed.
type Result struct {
	Field   string
	Message string
}

// OK reports whether every rule passed.
func (r Result) OK() bool {
	return r.Message == ""
}

// Validator evaluates payloads against the registered schemas.
type Validator struct {
	fields  *validator.Validate
	schemas map[Kind]Schema
}

// New returns a Validator carrying the signup and signin schemas.
func New() *Validator {
	return &Validator{
		fields: validator.New(validator.WithRequiredStructEnabled()),
		schemas: map[Kind]Schema{
			Signup: SignupSchema(),
			Signin: SigninSchema(),
		},
	}
}

// Validate checks payload against the schema for kind. The error is non-nil
// only when kind has no schema.
func (v *Validator) Validate(kind Kind, payload Payload) (Result, error) {
	schema, ok := v.schemas[kind]
	if !ok {
		return Result{}, oops.Code("VALIDATION_UNKNOWN_KIND").With("kind", int(kind)).Errorf("no schema for payload kind %s", kind)
	}
	return schema.evaluate(v.fields, payload), nil
}
