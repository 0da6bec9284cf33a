// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package config

import (
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

func invalid(key, format string, args ...any) error {
	return oops.Code("CONFIG_INVALID").With("key", key).Errorf(format, args...)
}

// Validate reports the first unusable setting. A missing cost factor,
// signing secret or database URL is never defaulted.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return invalid("http_addr", "http_addr is required")
	}
	if c.HashCost == 0 {
		return invalid("hash_cost", "hash_cost is required (SALT_WORK_FACTOR or --hash-cost)")
	}
	if c.HashCost < bcrypt.MinCost || c.HashCost > bcrypt.MaxCost {
		return invalid("hash_cost", "hash_cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.HashCost)
	}
	if c.TokenSecret == "" {
		return invalid("token_secret", "token_secret is required (TONEARM_TOKEN_SECRET or --token-secret)")
	}
	if c.TokenTTL < 0 {
		return invalid("token_ttl", "token_ttl cannot be negative, got %s", c.TokenTTL)
	}
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return invalid("database_url", "database_url is required for the postgres store (DATABASE_URL or POSTGRES_*)")
		}
	case StoreMemory:
	default:
		return invalid("store", "store must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return invalid("log_format", "log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.TokenSecret != "" {
		c.TokenSecret = "REDACTED"
	}
	if c.DatabaseURL != "" {
		c.DatabaseURL = redactURL(c.DatabaseURL)
	}
	return c
}
