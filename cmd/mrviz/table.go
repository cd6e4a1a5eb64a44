package main

import (
	"fmt"

	"github.com/nao1215/mrviz/internal/config"
	"github.com/nao1215/mrviz/internal/model"
	"github.com/nao1215/mrviz/internal/report"
	"github.com/nao1215/mrviz/internal/visualizer"
	"github.com/spf13/cobra"
)

// NewTableCmd creates the table command.
func NewTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table [report]",
		Short: "Print a report as a table",
		Long: `Table prints one row per layer with its type, tensor shape and feature values.

With --channels the table has one row per layer and channel instead, and
each cell holds the channel mean of a per-channel feature.

Examples:
  # Every feature of every layer
  mrviz table report.json

  # One feature, layers under "encoder."
  mrviz table -f per_channel_min -p encoder. report.json

  # Markdown table into a file
  mrviz table --format markdown -o report.md report.json

  # Excel workbook
  mrviz table -o report.xlsx report.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTableCmd,
	}

	cmd.Flags().StringP("feature", "f", "", "Only show this feature")
	cmd.Flags().StringP("prefix", "p", "", "Only show layers whose FQN starts with this prefix")
	cmd.Flags().Bool("channels", false, "One row per channel with channel means")
	cmd.Flags().String("format", config.DefaultTableFormat,
		"Table format: text, markdown, json or xlsx")
	cmd.Flags().StringP("output", "o", "", "Write the table to this file instead of stdout")
	addSourceFlags(cmd)

	return cmd
}

// runTableCmd executes the table command.
func runTableCmd(cmd *cobra.Command, args []string) error {
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

	r, source, err := loadReport(cmd.Context(), cmd, cfg, args)
	if err != nil {
		return err
	}
	logger.Debug("loaded report", "source", source, "layers", r.Len())

	feature := stringFlag(cmd, "feature")
	prefix := stringFlag(cmd, "prefix")
	channels, err := cmd.Flags().GetBool("channels")
	if err != nil {
		return err
	}

	vis := visualizer.New(r, visualizer.WithLogger(logger))

	var (
		text  string
		table *model.Table
	)
	if channels {
		text, table, err = vis.GenerateChannelTableInfo(feature, prefix)
	} else {
		text, table, err = vis.GenerateTableInfo(feature, prefix)
	}
	if err != nil {
		return err
	}

	format := resolveTableFormat(cmd, cfg, "format")
	output := stringFlag(cmd, "output")
	if format == report.FormatText && (output == "" || output == "-") {
		_, err := fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	}
	return writeTable(cmd, format, table, tableTitle(feature, prefix))
}

// tableTitle names a table after its filters.
func tableTitle(feature, prefix string) string {
	title := "All features"
	if feature != "" {
		title = feature
	}
	if prefix != "" {
		title += " (" + prefix + "*)"
	}
	return title
}
