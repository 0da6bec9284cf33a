// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/tonearm/accounts/internal/config"
)

// NewRootCmd creates the root command for the tonearm CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tonearm",
		Short: "Tonearm account service",
		Long: `Tonearm stores user accounts and issues bearer tokens on signup
and signin. Configuration comes from defaults, the environment, an optional
YAML file and flags, in increasing order of precedence.`,
		SilenceUsage: true,
	}

	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
