// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for signup and signin counters.
const (
	OutcomeSuccess           = "success"
	OutcomeInvalid           = "invalid"
	OutcomeDuplicateEmail    = "duplicate_email"
	OutcomeDuplicateUsername = "duplicate_username"
	OutcomeBadCredentials    = "bad_credentials"
	OutcomeError             = "error"
)

// Metrics holds the application counters. A nil *Metrics records nothing.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	Signups      *prometheus.CounterVec
	Signins      *prometheus.CounterVec
}

// NewMetrics creates the application counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tonearm_http_requests_total",
				Help: "HTTP requests served, by route pattern and status code",
			},
			[]string{"route", "status"},
		),
		Signups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tonearm_signups_total",
				Help: "Signup attempts by outcome",
			},
			[]string{"outcome"},
		),
		Signins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tonearm_signins_total",
				Help: "Signin attempts by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(m.HTTPRequests, m.Signups, m.Signins)
	return m
}

// ObserveRequest counts one served request.
func (m *Metrics) ObserveRequest(route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// RecordSignup counts one signup attempt.
func (m *Metrics) RecordSignup(outcome string) {
	if m == nil {
		return
	}
	m.Signups.WithLabelValues(outcome).Inc()
}

// RecordSignin counts one signin attempt.
func (m *Metrics) RecordSignin(outcome string) {
	if m == nil {
		return
	}
	m.Signins.WithLabelValues(outcome).Inc()
}
