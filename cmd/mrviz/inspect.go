package main

import (
	"fmt"
	"strings"

	"github.com/nao1215/mrviz/internal/visualizer"
	"github.com/spf13/cobra"
)

// NewLayersCmd creates the layers command.
func NewLayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layers [report]",
		Short: "List the layer FQNs of a report",
		Long: `List prints the distinct layer FQNs of a report in sorted order, one per line.

Examples:
  # List layers of a report file
  mrviz layers report.json

  # Only layers under a module
  mrviz layers -p encoder. report.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runLayersCmd,
	}

	cmd.Flags().StringP("prefix", "p", "", "Only list layers whose FQN starts with this prefix")
	addSourceFlags(cmd)

	return cmd
}

// runLayersCmd executes the layers command.
func runLayersCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	r, _, err := loadReport(cmd.Context(), cmd, cfg, args)
	if err != nil {
		return err
	}

	prefix, err := cmd.Flags().GetString("prefix")
	if err != nil {
		return err
	}

	vis := visualizer.New(r, visualizer.WithLogger(setupLogger(cfg)))
	for _, fqn := range vis.SortedModuleFQNs() {
		if prefix != "" && !strings.HasPrefix(fqn, prefix) {
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), fqn)
	}
	return nil
}

// NewFeaturesCmd creates the features command.
func NewFeaturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features [report]",
		Short: "List the feature names of a report",
		Long: `List prints the distinct feature names of a report in sorted order.

By default only plottable (tensor) features are listed, since those are
the ones plot and hist accept. Use --all to include every feature.

Examples:
  mrviz features report.json
  mrviz features --all report.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runFeaturesCmd,
	}

	cmd.Flags().BoolP("all", "a", false, "Include features that cannot be plotted")
	addSourceFlags(cmd)

	return cmd
}

// runFeaturesCmd executes the features command.
func runFeaturesCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	r, _, err := loadReport(cmd.Context(), cmd, cfg, args)
	if err != nil {
		return err
	}

	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}

	vis := visualizer.New(r, visualizer.WithLogger(setupLogger(cfg)))
	for _, name := range vis.SortedFeatureNames(!all) {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
