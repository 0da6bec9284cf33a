// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonearm/accounts/pkg/errutil"
)

type fakeAutoMigrator struct {
	upErr  error
	ups    int
	closed bool
}

func (m *fakeAutoMigrator) Up() error    { m.ups++; return m.upErr }
func (m *fakeAutoMigrator) Close() error { m.closed = true; return nil }

// serveWith runs "tonearm serve args..." with deps until ctx is cancelled.
func serveWith(ctx context.Context, deps *ServeDeps, args ...string) (string, error) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)

	serveCmd, _, err := root.Find([]string{"serve"})
	if err != nil {
		return "", err
	}
	serveCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runServe(ctx, cmd, deps)
	}

	root.SetArgs(append([]string{"serve"}, args...))
	err = root.Execute()
	return out.String(), err
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "SALT_WORK_FACTOR", "TONEARM_TOKEN_SECRET", "TONEARM_STORE",
		"TONEARM_HTTP_ADDR", "PORT", "POSTGRES_HOST", "TONEARM_METRICS_ADDR", "TONEARM_AUTO_MIGRATE",
	} {
		t.Setenv(key, "")
	}
}

func TestServe_InvalidConfiguration(t *testing.T) {
	clearEnv(t)

	_, err := serveWith(context.Background(), nil, "--store", "memory", "--token-secret", "s")
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	errutil.AssertErrorContext(t, err, "key", "hash_cost")

	_, err = serveWith(context.Background(), nil, "--store", "memory", "--hash-cost", "4")
	errutil.AssertErrorContext(t, err, "key", "token_secret")

	_, err = serveWith(context.Background(), nil, "--hash-cost", "4", "--token-secret", "s")
	errutil.AssertErrorContext(t, err, "key", "database_url")
}

func TestServe_MemoryStoreEndToEnd(t *testing.T) {
	clearEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type addrs struct{ api, metrics string }
	ready := make(chan addrs, 1)
	deps := &ServeDeps{Ready: func(api, metrics string) { ready <- addrs{api, metrics} }}

	done := make(chan error, 1)
	go func() {
		_, err := serveWith(ctx, deps,
			"--store", "memory",
			"--hash-cost", "4",
			"--token-secret", "s3cret",
			"--http-addr", "127.0.0.1:0",
			"--metrics-addr", "127.0.0.1:0",
			"--log-format", "text",
		)
		done <- err
	}()

	var a addrs
	select {
	case a = <-ready:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not become ready")
	}

	client := &http.Client{Timeout: 5 * time.Second, Transport: &http.Transport{DisableKeepAlives: true}}

	resp, err := client.Post("http://"+a.api+"/api/users/signup", "application/json", strings.NewReader(
		`{"username":"test123456","email":"test123456@pm.me","password":"test123456","passwordConfirmation":"test123456"}`))
	require.NoError(t, err)
	var created struct {
		Message string `json:"message"`
		Data    struct {
			Token      string `json:"token"`
			ID         string `json:"id"`
			Preference string `json:"preference"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "opus", created.Data.Preference)

	resp, err = client.Get("http://" + a.metrics + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Contains(t, string(body), `tonearm_signups_total{outcome="success"} 1`)

	resp, err = client.Get("http://" + a.metrics + "/healthz/readiness")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not shut down")
	}
}

func TestServe_PostgresWithAutoMigrate(t *testing.T) {
	clearEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	pool.ExpectClose()

	migrator := &fakeAutoMigrator{}
	var openedURL string
	deps := &ServeDeps{
		PoolOpener: func(_ context.Context, url string) (Pool, error) {
			openedURL = url
			return pool, nil
		},
		MigratorFactory: func(string) (AutoMigrator, error) { return migrator, nil },
		Ready: func(_, metrics string) {
			resp, err := http.Get("http://" + metrics + "/healthz/readiness")
			if err == nil {
				_ = resp.Body.Close()
			}
			cancel()
		},
	}

	_, err = serveWith(ctx, deps,
		"--database-url", "postgres://u:p@db/tonearm",
		"--auto-migrate",
		"--hash-cost", "4",
		"--token-secret", "s",
		"--http-addr", "127.0.0.1:0",
		"--metrics-addr", "127.0.0.1:0",
	)
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db/tonearm", openedURL)
	assert.Equal(t, 1, migrator.ups)
	assert.True(t, migrator.closed)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestServe_AutoMigrateFailureStopsStartup(t *testing.T) {
	clearEnv(t)

	opened := false
	deps := &ServeDeps{
		PoolOpener: func(context.Context, string) (Pool, error) {
			opened = true
			return nil, errors.New("should not connect")
		},
		MigratorFactory: func(string) (AutoMigrator, error) {
			return &fakeAutoMigrator{upErr: errors.New("dirty database")}, nil
		},
	}

	_, err := serveWith(context.Background(), deps,
		"--database-url", "postgres://db/tonearm",
		"--auto-migrate",
		"--hash-cost", "4",
		"--token-secret", "s",
	)
	errutil.AssertErrorCode(t, err, "AUTO_MIGRATE_FAILED")
	assert.False(t, opened)
}

func TestServe_PoolFailure(t *testing.T) {
	clearEnv(t)
	deps := &ServeDeps{
		PoolOpener: func(context.Context, string) (Pool, error) {
			return nil, errors.New("connection refused")
		},
	}

	_, err := serveWith(context.Background(), deps,
		"--database-url", "postgres://db/tonearm",
		"--hash-cost", "4",
		"--token-secret", "s",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
