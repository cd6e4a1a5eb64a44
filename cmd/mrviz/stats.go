package main

import (
	"errors"
	"fmt"

	"github.com/nao1215/mrviz/internal/config"
	"github.com/nao1215/mrviz/internal/visualizer"
	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [report]",
		Short: "Summarize a tensor feature per layer",
		Long: `Stats prints count, min, max, mean, standard deviation and median of a
tensor feature for each layer that has it. NaN and infinite elements are
not counted.

Examples:
  mrviz stats -f per_channel_min report.json
  mrviz stats -f per_channel_min --format json -o min.json report.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStatsCmd,
	}

	cmd.Flags().StringP("feature", "f", "", "Feature to summarize (required)")
	cmd.Flags().StringP("prefix", "p", "", "Only include layers whose FQN starts with this prefix")
	cmd.Flags().String("format", config.DefaultTableFormat,
		"Table format: text, markdown, json or xlsx")
	cmd.Flags().StringP("output", "o", "", "Write the table to this file instead of stdout")
	addSourceFlags(cmd)

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, args []string) error {
	feature := stringFlag(cmd, "feature")
	if feature == "" {
		return errors.New("--feature is required")
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if flagChanged(cmd, "format") {
		cfg.TableFormat = stringFlag(cmd, "format")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)

	r, _, err := loadReport(cmd.Context(), cmd, cfg, args)
	if err != nil {
		return err
	}

	prefix := stringFlag(cmd, "prefix")
	if !flagChanged(cmd, "prefix") {
		prefix = cfg.FeatureSettings(feature).Prefix
	}

	vis := visualizer.New(r, visualizer.WithLogger(logger))
	table, err := vis.GenerateSummaryInfo(feature, prefix)
	if err != nil {
		return err
	}
	return writeTable(cmd, resolveTableFormat(cmd, cfg, "format"), table, feature+" summary")
}
