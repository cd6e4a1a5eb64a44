// Package main provides the entry point for the mrviz CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for mrviz.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mrviz",
		Short: "Visualize per-layer model feature reports",
		Long: `mrviz reads a model report (a mapping of layer FQNs to named features)
and renders it as tables, per-layer line plots or histograms.

Reports are read from a JSON or YAML file, from stdin ("-"), or from the
report history database (see "mrviz history").`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write log records to stderr as JSON lines")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to settings file (default: search .mrviz.yaml)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory of the report history database (default: XDG data dir)")

	// Add subcommands
	cmd.AddCommand(NewLayersCmd())
	cmd.AddCommand(NewFeaturesCmd())
	cmd.AddCommand(NewTableCmd())
	cmd.AddCommand(NewPlotCmd())
	cmd.AddCommand(NewHistCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
