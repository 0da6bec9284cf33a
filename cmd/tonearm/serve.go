// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tonearm/accounts/internal/account"
	"github.com/tonearm/accounts/internal/account/memory"
	"github.com/tonearm/accounts/internal/account/postgres"
	"github.com/tonearm/accounts/internal/auth"
	"github.com/tonearm/accounts/internal/config"
	"github.com/tonearm/accounts/internal/httpapi"
	"github.com/tonearm/accounts/internal/logging"
	"github.com/tonearm/accounts/internal/observability"
	"github.com/tonearm/accounts/internal/store"
	"github.com/tonearm/accounts/pkg/errutil"
)

const shutdownTimeout = 10 * time.Second

// Pool is the part of *pgxpool.Pool that serve uses.
type Pool interface {
	postgres.DB
	Ping(ctx context.Context) error
	Close()
}

// AutoMigrator applies pending migrations at startup.
type AutoMigrator interface {
	Up() error
	Close() error
}

// ServeDeps holds injectable dependencies for serve. Nil fields use the
// production implementations.
type ServeDeps struct {
	// PoolOpener connects to PostgreSQL. Default: store.Connect.
	PoolOpener func(ctx context.Context, databaseURL string) (Pool, error)

	// MigratorFactory builds the migrator used when auto_migrate is set.
	// Default: store.NewMigrator.
	MigratorFactory func(databaseURL string) (AutoMigrator, error)

	// Ready is called once both listeners are bound.
	Ready func(apiAddr, metricsAddr string)
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the account API",
		Long: `Serve the signup, signin and identity endpoints. Metrics and health
probes are served on a separate address unless --metrics-addr is empty.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, nil)
		},
	}
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	out := ServeDeps{}
	if d != nil {
		out = *d
	}
	if out.PoolOpener == nil {
		out.PoolOpener = func(ctx context.Context, databaseURL string) (Pool, error) {
			pool, err := store.Connect(ctx, databaseURL)
			if err != nil {
				return nil, err
			}
			return pool, nil
		}
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(databaseURL string) (AutoMigrator, error) {
			m, err := store.NewMigrator(databaseURL)
			if err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	if out.Ready == nil {
		out.Ready = func(string, string) {}
	}
	return &out
}

func runServe(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	deps = deps.withDefaults()

	cfg, err := config.Load(config.Options{Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return oops.Wrapf(err, "invalid configuration")
	}

	logger, err := logging.Setup(logging.Options{
		Service: "tonearm",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   slog.LevelInfo,
	}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	logger.Info("starting tonearm", "config", cfg.Redacted())

	accounts, readiness, closeStore, err := openStore(ctx, cfg, deps)
	if err != nil {
		errutil.LogError(ctx, logger, "failed to open account store", err)
		return err
	}
	defer closeStore()

	hasher, err := auth.NewBcryptHasher(cfg.HashCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret: cfg.TokenSecret,
		Issuer: cfg.TokenIssuer,
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		return err
	}
	service, err := auth.NewService(accounts, hasher, tokens, auth.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var metrics *observability.Metrics
	var obsServer *observability.Server
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, readiness)
		obsErrCh, err := obsServer.Start()
		if err != nil {
			return err
		}
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability")
		metrics = obsServer.Metrics()
	}

	api, err := httpapi.NewServer(service, httpapi.WithLogger(logger), httpapi.WithMetrics(metrics))
	if err != nil {
		stopObservability(logger, obsServer)
		return err
	}
	apiErrCh, err := api.Start(cfg.HTTPAddr)
	if err != nil {
		stopObservability(logger, obsServer)
		return err
	}
	go monitorServerErrors(ctx, cancel, apiErrCh, "api")

	metricsAddr := ""
	if obsServer != nil {
		metricsAddr = obsServer.Addr()
	}
	logger.Info("tonearm ready", "http_addr", api.Addr(), "metrics_addr", metricsAddr)
	deps.Ready(api.Addr(), metricsAddr)

	<-ctx.Done()
	logger.Info("shutting down")

	stopServer(logger, "api", api)
	stopObservability(logger, obsServer)

	logger.Info("shutdown complete")
	return nil
}

// openStore returns the configured account store, a readiness check for it
// and a cleanup function.
func openStore(ctx context.Context, cfg config.Config, deps *ServeDeps) (account.Store, observability.ReadinessChecker, func(), error) {
	folding := account.Folding{CaseInsensitive: cfg.CaseInsensitiveIdentity}

	if cfg.Store == config.StoreMemory {
		slog.Warn("using in-memory account store; accounts are lost on exit")
		return memory.NewStore(folding), nil, func() {}, nil
	}

	if cfg.AutoMigrate {
		if err := autoMigrate(cfg.DatabaseURL, deps.MigratorFactory); err != nil {
			return nil, nil, nil, err
		}
	}

	pool, err := deps.PoolOpener(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	slog.Info("connected to database")

	return postgres.NewStore(pool, folding), pool.Ping, pool.Close, nil
}

func autoMigrate(databaseURL string, factory func(string) (AutoMigrator, error)) error {
	migrator, err := factory(databaseURL)
	if err != nil {
		return oops.Code("AUTO_MIGRATE_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Warn("failed to close migrator", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return oops.Code("AUTO_MIGRATE_FAILED").With("operation", "apply migrations").Wrap(err)
	}
	slog.Info("database migrations applied")
	return nil
}

type stopper interface {
	Stop(ctx context.Context) error
}

func stopServer(logger *slog.Logger, name string, s stopper) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		logger.Warn("error stopping server", "server", name, "error", err)
	}
}

func stopObservability(logger *slog.Logger, s *observability.Server) {
	if s != nil {
		stopServer(logger, "observability", s)
	}
}

// monitorServerErrors cancels the serve context when a server fails.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, name string) {
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			slog.Error("server failed", "server", name, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
