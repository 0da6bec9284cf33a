// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/tonearm/accounts/internal/auth"
	"github.com/tonearm/accounts/internal/observability"
)

// Route patterns. They double as the route label on request metrics.
const (
	RouteRoot   = "GET /{$}"
	RouteSignup = "POST /api/users/signup"
	RouteSignin = "POST /api/users/signin"
	RouteMe     = "GET /api/users/me"
	routeOther  = "/"
)

// Server serves the public API.
type Server struct {
	service *auth.Service
	logger  *slog.Logger
	metrics *observability.Metrics
	handler http.Handler

	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics records request and signup/signin counters into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer builds the routes around service.
func NewServer(service *auth.Service, opts ...Option) (*Server, error) {
	if service == nil {
		return nil, oops.Code("HTTP_INVALID_SERVER").Errorf("auth service is required")
	}

	s := &Server{service: service, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	s.route(mux, RouteRoot, s.handleRoot)
	s.route(mux, RouteSignup, s.handleSignup)
	s.route(mux, RouteSignin, s.handleSignin)
	s.route(mux, RouteMe, s.handleMe)
	s.route(mux, routeOther, s.handleNotFound)
	s.handler = s.recoverPanics(mux)

	return s, nil
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument(pattern, h))
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on addr. The returned channel receives a serve error if the
// server fails and is closed once it stops.
func (s *Server) Start(addr string) (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Code("HTTP_ALREADY_RUNNING").Errorf("http server already running")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code("HTTP_LISTEN_FAILED").With("addr", addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("http server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop drains in-flight requests until ctx ends. Stopping a stopped server
// is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.running.Store(true)
		return oops.Code("HTTP_SHUTDOWN_FAILED").Wrap(err)
	}
	s.logger.Info("http server stopped")
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
