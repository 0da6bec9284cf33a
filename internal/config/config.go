// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

// Package config loads process configuration.
//
// Sources, lowest to highest precedence: built-in defaults, environment
// variables, the YAML file named by --config, then flags the user set
// explicitly. Business packages never read the environment; they receive
// values from Config.
package config

import (
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Storage backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config is the full process configuration.
type Config struct {
	HTTPAddr                string        `koanf:"http_addr" env:"TONEARM_HTTP_ADDR"`
	MetricsAddr             string        `koanf:"metrics_addr" env:"TONEARM_METRICS_ADDR"`
	DatabaseURL             string        `koanf:"database_url" env:"DATABASE_URL"`
	Store                   string        `koanf:"store" env:"TONEARM_STORE"`
	HashCost                int           `koanf:"hash_cost" env:"SALT_WORK_FACTOR"`
	TokenSecret             string        `koanf:"token_secret" env:"TONEARM_TOKEN_SECRET"`
	TokenTTL                time.Duration `koanf:"token_ttl" env:"TONEARM_TOKEN_TTL"`
	TokenIssuer             string        `koanf:"token_issuer" env:"TONEARM_TOKEN_ISSUER"`
	CaseInsensitiveIdentity bool          `koanf:"case_insensitive_identity" env:"TONEARM_CASE_INSENSITIVE_IDENTITY"`
	AutoMigrate             bool          `koanf:"auto_migrate" env:"TONEARM_AUTO_MIGRATE"`
	LogFormat               string        `koanf:"log_format" env:"TONEARM_LOG_FORMAT"`
}

// postgresEnv is the alternative to DATABASE_URL used by container setups.
type postgresEnv struct {
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"5432"`
	DB       string `env:"DB"`
}

type envOnly struct {
	Port     string      `env:"PORT"`
	Postgres postgresEnv `envPrefix:"POSTGRES_"`
}

// Default returns the built-in defaults. HashCost and TokenSecret have none.
func Default() Config {
	return Config{
		HTTPAddr:    ":3000",
		MetricsAddr: "127.0.0.1:9100",
		Store:       StorePostgres,
		TokenIssuer: "tonearm",
		LogFormat:   "json",
	}
}

// RegisterFlags adds one flag per Config key to fs, with defaults shown in help.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("config", "", "path to a YAML configuration file")
	fs.String("http-addr", d.HTTPAddr, "API listen address")
	fs.String("metrics-addr", d.MetricsAddr, "metrics/health listen address (empty = disabled)")
	fs.String("database-url", "", "PostgreSQL connection URL")
	fs.String("store", d.Store, "account storage backend (postgres or memory)")
	fs.Int("hash-cost", 0, "bcrypt cost factor (required)")
	fs.String("token-secret", "", "token signing secret (required)")
	fs.Duration("token-ttl", 0, "token lifetime (0 = tokens do not expire)")
	fs.String("token-issuer", d.TokenIssuer, "token iss claim")
	fs.Bool("case-insensitive-identity", false, "treat emails and usernames differing only in case as equal; set before the first account is stored, existing rows are not re-folded")
	fs.Bool("auto-migrate", false, "apply database migrations before serving")
	fs.String("log-format", d.LogFormat, "log format (json or text)")
}

// Options controls Load.
type Options struct {
	// Flags are the parsed command-line flags. Only flags the user changed
	// override other sources.
	Flags *pflag.FlagSet
	// File is a YAML file path. When empty, the --config flag is consulted.
	File string
	// Environment replaces the process environment when non-nil.
	Environment map[string]string
}

// Load merges all configuration sources. It does not call Validate.
func Load(opts Options) (Config, error) {
	cfg := Default()

	envOpts := env.Options{Environment: opts.Environment}
	if err := env.ParseWithOptions(&cfg, envOpts); err != nil {
		return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("source", "environment").Wrap(err)
	}
	var extra envOnly
	if err := env.ParseWithOptions(&extra, envOpts); err != nil {
		return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("source", "environment").Wrap(err)
	}
	applyEnvFallbacks(&cfg, extra, lookup(opts.Environment, "TONEARM_HTTP_ADDR") != "")

	k := koanf.New(".")

	path := opts.File
	if path == "" && opts.Flags != nil {
		path, _ = opts.Flags.GetString("config")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("source", "file").With("path", path).Wrap(err)
		}
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("source", "merge").Wrap(err)
	}

	return cfg, nil
}

func lookup(environment map[string]string, key string) string {
	if environment != nil {
		return environment[key]
	}
	return os.Getenv(key)
}

// applyEnvFallbacks honours PORT and POSTGRES_* when their dedicated
// variables are absent.
func applyEnvFallbacks(cfg *Config, extra envOnly, httpAddrSet bool) {
	if !httpAddrSet && extra.Port != "" {
		cfg.HTTPAddr = ":" + extra.Port
	}

	pg := extra.Postgres
	if cfg.DatabaseURL == "" && pg.Host != "" {
		u := url.URL{
			Scheme: "postgres",
			Host:   net.JoinHostPort(pg.Host, pg.Port),
			Path:   "/" + pg.DB,
		}
		if pg.User != "" {
			u.User = url.UserPassword(pg.User, pg.Password)
		}
		cfg.DatabaseURL = u.String()
	}
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "REDACTED"
	}
	return u.Redacted()
}
