// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package httpapi

import (
	"net/http"

	"github.com/tonearm/accounts/internal/account"
	"github.com/tonearm/accounts/internal/auth"
	"github.com/tonearm/accounts/internal/observability"
	"github.com/tonearm/accounts/pkg/errutil"
)

// CodeBadRequestBody marks a body that could not be decoded.
const CodeBadRequestBody = "HTTP_BAD_REQUEST_BODY"

// Messages written by this package.
const (
	MsgInvalidBody   = "Invalid request body."
	MsgRouteNotFound = "Could not find route"
	MsgInternalError = "Internal server error."
	MsgMissingBearer = auth.MsgInvalidToken
)

// statusByCode maps error codes to response statuses. Codes not listed are
// internal failures and answer 500.
var statusByCode = map[string]int{
	CodeBadRequestBody:            http.StatusBadRequest,
	auth.CodeValidationFailed:     http.StatusBadRequest,
	auth.CodeInvalidCredentials:   http.StatusUnauthorized,
	auth.CodeInvalidToken:         http.StatusUnauthorized,
	account.CodeDuplicateEmail:    http.StatusConflict,
	account.CodeDuplicateUsername: http.StatusConflict,
}

// outcomeByCode labels signup and signin counters.
var outcomeByCode = map[string]string{
	CodeBadRequestBody:            observability.OutcomeInvalid,
	auth.CodeValidationFailed:     observability.OutcomeInvalid,
	auth.CodeInvalidCredentials:   observability.OutcomeBadCredentials,
	account.CodeDuplicateEmail:    observability.OutcomeDuplicateEmail,
	account.CodeDuplicateUsername: observability.OutcomeDuplicateUsername,
}

// StatusFor returns the HTTP status for err.
func StatusFor(err error) int {
	if status, ok := statusByCode[errutil.Code(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func outcomeFor(err error) string {
	if err == nil {
		return observability.OutcomeSuccess
	}
	if outcome, ok := outcomeByCode[errutil.Code(err)]; ok {
		return outcome
	}
	return observability.OutcomeError
}

// writeError answers with the status for err. Client errors carry their
// public message; internal errors are logged and answered generically.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	message := MsgInternalError
	if status == http.StatusInternalServerError {
		errutil.LogError(r.Context(), s.logger, "request failed", err)
	} else {
		message = errutil.Public(err, http.StatusText(status))
	}
	s.respond(w, r, status, MessageResponse{Message: message})
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	if err := writeJSON(w, status, body); err != nil {
		s.logger.WarnContext(r.Context(), "failed to write response", "status", status, "error", err)
	}
}
