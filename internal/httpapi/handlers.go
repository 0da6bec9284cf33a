// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package httpapi

import (
	"net/http"
	"strings"

	"github.com/samber/oops"

	"github.com/tonearm/accounts/internal/auth"
)

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // liveness clients may disconnect
	w.Write([]byte(http.StatusText(http.StatusOK)))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusNotFound, MessageResponse{Message: MsgRouteNotFound})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body signupBody
	if err := decodeBody(w, r, &body); err != nil {
		s.metrics.RecordSignup(outcomeFor(err))
		s.writeError(w, r, err)
		return
	}

	session, err := s.service.Signup(r.Context(), auth.SignupRequest{
		Username:             body.Username,
		Email:                body.Email,
		Password:             body.Password,
		PasswordConfirmation: body.PasswordConfirmation,
	})
	s.metrics.RecordSignup(outcomeFor(err))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.respond(w, r, http.StatusCreated, MessageResponse{
		Message: auth.MsgUserCreated,
		Data:    sessionResponse(session),
	})
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var body signinBody
	if err := decodeBody(w, r, &body); err != nil {
		s.metrics.RecordSignin(outcomeFor(err))
		s.writeError(w, r, err)
		return
	}

	session, err := s.service.Signin(r.Context(), auth.SigninRequest{
		Email:    body.Email,
		Password: body.Password,
	})
	s.metrics.RecordSignin(outcomeFor(err))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.respond(w, r, http.StatusOK, sessionResponse(session))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		s.writeError(w, r, oops.Code(auth.CodeInvalidToken).Public(MsgMissingBearer).Wrap(auth.ErrInvalidToken))
		return
	}

	claims, err := s.service.Authenticate(r.Context(), token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.respond(w, r, http.StatusOK, IdentityResponse{
		ID:       claims.AccountID,
		Username: claims.Username,
		Email:    claims.Email,
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func sessionResponse(session *auth.Session) SessionResponse {
	return SessionResponse{
		Token:      session.Token,
		ID:         session.AccountID,
		Preference: string(session.Preference),
	}
}
