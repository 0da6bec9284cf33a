// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package httpapi

import (
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel/propagation"

	"github.com/tonearm/accounts/internal/logging"
	"github.com/tonearm/accounts/pkg/errutil"
)

// traceContext reads W3C traceparent headers so logs join the caller's trace.
var traceContext = propagation.TraceContext{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	//nolint:wrapcheck // passthrough
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// instrument tags the request with an id and any incoming trace context,
// then logs and counts it under route.
func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ulid.Make().String()
		w.Header().Set("X-Request-Id", id)
		ctx := traceContext.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		r = r.WithContext(logging.WithRequestID(ctx, id))

		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		defer func() {
			p := recover()
			status := rec.status
			switch {
			case p != nil:
				status = http.StatusInternalServerError
			case status == 0:
				status = http.StatusOK
			}
			s.metrics.ObserveRequest(route, status)
			s.logger.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", status,
				"duration", time.Since(start),
			)
			if p != nil {
				panic(p)
			}
		}()

		next.ServeHTTP(rec, r)
	})
}

// recoverPanics turns a handler panic into a 500 and logs it with its stack.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(v)
			}
			err := oops.Code("HTTP_PANIC").
				With("stack", string(debug.Stack())).
				With("path", r.URL.Path).
				Errorf("panic: %v", v)
			errutil.LogError(r.Context(), s.logger, "handler panicked", err)
			s.respond(w, r, http.StatusInternalServerError, MessageResponse{Message: MsgInternalError})
		}()
		next.ServeHTTP(w, r)
	})
}
