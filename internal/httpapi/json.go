// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/samber/oops"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// MessageResponse is the body of every error and of the signup response.
type MessageResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// SessionResponse identifies the signed-in account.
type SessionResponse struct {
	Token      string `json:"token"`
	ID         string `json:"id"`
	Preference string `json:"preference"`
}

// IdentityResponse is the body of GET /api/users/me.
type IdentityResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type signupBody struct {
	Username             *string `json:"username"`
	Email                *string `json:"email"`
	Password             *string `json:"password"`
	PasswordConfirmation *string `json:"passwordConfirmation"`
}

type signinBody struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// errBadBody marks a request body that is not a JSON object.
var errBadBody = errors.New("malformed request body")

// decodeBody reads a JSON object from r into dst. An empty body decodes as {}.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return oops.Code(CodeBadRequestBody).Public(MsgInvalidBody).Wrap(errors.Join(errBadBody, err))
	}
	if dec.More() {
		return oops.Code(CodeBadRequestBody).Public(MsgInvalidBody).Wrap(errors.Join(errBadBody, errors.New("trailing data after JSON object")))
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:wrapcheck // encoder errors are logged by the caller
	return json.NewEncoder(w).Encode(v)
}
