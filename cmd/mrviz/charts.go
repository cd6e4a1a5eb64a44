package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/mrviz/internal/config"
	"github.com/nao1215/mrviz/internal/model"
	"github.com/nao1215/mrviz/internal/pipeline"
	"github.com/nao1215/mrviz/internal/visualizer"
	"github.com/spf13/cobra"
)

// NewPlotCmd creates the plot command.
func NewPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [report]",
		Short: "Plot a tensor feature across layers",
		Long: `Plot draws a line chart of a tensor feature with one point per layer.

Single-value features give one line. Per-channel features give the mean
over channels plus up to --max-series lines for individual channels;
layers with fewer channels leave gaps in those lines.

Examples:
  # Interactive HTML chart
  mrviz plot -f per_channel_min -o min.html report.json

  # PNG chart, format taken from the file name
  mrviz plot -f per_channel_min -p encoder. -o min.png report.json

  # Mermaid chart for a README, written to stdout
  mrviz plot -f per_channel_min --format mermaid report.json

  # One chart per plottable feature
  mrviz plot --all-features --out-dir charts report.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChartCmd(pipeline.KindPlot),
	}

	addChartFlags(cmd)
	cmd.Flags().Int("max-series", config.DefaultMaxChannelSeries,
		"Per-channel lines drawn next to the channel mean")

	return cmd
}

// NewHistCmd creates the hist command.
func NewHistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hist [report]",
		Short: "Draw a histogram of a tensor feature",
		Long: `Hist pools every element of a tensor feature over the selected layers and
draws a histogram with --bins equal-width bins. NaN and infinite elements
are ignored.

Examples:
  mrviz hist -f per_channel_min -o min_hist.html report.json
  mrviz hist -f per_channel_min --bins 30 --format svg -o min.svg report.json
  mrviz hist -f per_channel_min --data report.json
  mrviz hist --all-features --format png --out-dir charts report.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChartCmd(pipeline.KindHistogram),
	}

	addChartFlags(cmd)
	cmd.Flags().IntP("bins", "b", config.DefaultNumBins, "Number of histogram bins")

	return cmd
}

// addChartFlags registers the flags shared by plot and hist.
func addChartFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("feature", "f", "", "Feature to draw")
	cmd.Flags().StringP("prefix", "p", "", "Only include layers whose FQN starts with this prefix")
	cmd.Flags().String("format", config.DefaultChartFormat,
		"Chart format: html, png, svg or mermaid")
	cmd.Flags().StringP("output", "o", "", "Write the chart to this file instead of stdout")
	cmd.Flags().Bool("data", false, "Print the chart data as a table instead of drawing it")
	cmd.Flags().Bool("all-features", false, "Draw every plottable feature into --out-dir")
	cmd.Flags().String("out-dir", ".", "Directory for --all-features charts")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Charts rendered in parallel with --all-features")
	addSourceFlags(cmd)
}

// applyChartFlags copies the explicitly set chart flags into cfg so that
// Validate checks them.
func applyChartFlags(cmd *cobra.Command, cfg *config.Config) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"bins", &cfg.NumBins},
		{"max-series", &cfg.MaxChannelSeries},
		{"concurrency", &cfg.Concurrency},
	}
	for _, f := range ints {
		if !flagChanged(cmd, f.name) {
			continue
		}
		v, err := cmd.Flags().GetInt(f.name)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	if flagChanged(cmd, "format") {
		cfg.ChartFormat = stringFlag(cmd, "format")
	}
	return nil
}

// runChartCmd returns the RunE function of plot or hist.
func runChartCmd(kind pipeline.Kind) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}
		if err := applyChartFlags(cmd, cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		logger := setupLogger(cfg)

		// Set up context with signal handling for graceful shutdown
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r, source, err := loadReport(ctx, cmd, cfg, args)
		if err != nil {
			return err
		}
		logger.Debug("loaded report", "source", source, "layers", r.Len())

		all, err := cmd.Flags().GetBool("all-features")
		if err != nil {
			return err
		}
		if all {
			return runBatchCharts(ctx, cmd, cfg, r, kind, logger)
		}
		return runSingleChart(cmd, cfg, r, kind, logger)
	}
}

// runSingleChart draws one feature to -o or stdout.
func runSingleChart(cmd *cobra.Command, cfg *config.Config, r *model.Report, kind pipeline.Kind, logger *slog.Logger) error {
	feature := stringFlag(cmd, "feature")
	if feature == "" {
		return errors.New("--feature is required (or use --all-features)")
	}

	s, err := resolveChartSettings(cmd, cfg, feature)
	if err != nil {
		return err
	}

	vis := visualizer.New(r, s.options(logger)...)
	render, table, err := generateChart(vis, kind, feature, s.prefix)
	if err != nil {
		return err
	}

	data, err := cmd.Flags().GetBool("data")
	if err != nil {
		return err
	}
	if data {
		return writeTable(cmd, resolveTableFormat(cmd, cfg, ""), table, tableTitle(feature, s.prefix))
	}

	output := stringFlag(cmd, "output")
	if output == "" || output == "-" {
		return render(cmd.OutOrStdout())
	}

	// The write step renders into a temporary file first, so a failed
	// render leaves no partial chart at output.
	job := &pipeline.Job{
		Feature: feature,
		Prefix:  s.prefix,
		Kind:    kind,
		Format:  s.format,
		Path:    filepath.Clean(output),
		Render:  render,
	}
	if err := pipeline.NewWriteStep(logger).Do(cmd.Context(), job); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s chart of %s to %s\n", s.format, feature, output)
	return nil
}

// generateChart builds the chart of the given kind.
func generateChart(vis *visualizer.Visualizer, kind pipeline.Kind, feature, prefix string) (visualizer.RenderFunc, *model.Table, error) {
	if kind == pipeline.KindHistogram {
		return vis.GenerateHistogramInfo(feature, prefix)
	}
	return vis.GeneratePlotInfo(feature, prefix)
}

// runBatchCharts draws every plottable feature into --out-dir.
func runBatchCharts(ctx context.Context, cmd *cobra.Command, cfg *config.Config, r *model.Report, kind pipeline.Kind, logger *slog.Logger) error {
	outDir := stringFlag(cmd, "out-dir")
	if outDir == "" {
		outDir = "."
	}

	features := visualizer.New(r).SortedFeatureNames(true)
	if len(features) == 0 {
		return errors.New("report has no plottable features")
	}

	gen := &featureGenerator{
		report:   r,
		settings: make(map[string]chartSettings, len(features)),
		logger:   logger,
	}
	for _, feature := range features {
		s, err := resolveChartSettings(cmd, cfg, feature)
		if err != nil {
			return fmt.Errorf("settings for %s: %w", feature, err)
		}
		gen.settings[feature] = s
	}

	jobs := make([]*pipeline.Job, len(features))
	for i, feature := range features {
		s := gen.settings[feature]
		jobs[i] = &pipeline.Job{
			Feature: feature,
			Prefix:  s.prefix,
			Kind:    kind,
			Format:  s.format,
		}
	}
	pipeline.AssignPaths(jobs, outDir)

	renderer := pipeline.NewBatchRenderer(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(gen, pipeline.WithLogger(logger))
		},
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	jobs, err := renderer.Render(ctx, jobs)

	out := cmd.OutOrStdout()
	for _, job := range jobs {
		if job.Err != nil {
			fmt.Fprintf(out, "  FAIL  %-32s  %v\n", job.Feature, job.Err)
			continue
		}
		fmt.Fprintf(out, "  OK    %-32s  %s (%d bytes)\n", job.Feature, job.Path, job.Bytes)
	}
	if err != nil {
		return fmt.Errorf("rendering interrupted: %w", err)
	}

	if failed := pipeline.Failed(jobs); len(failed) > 0 {
		return fmt.Errorf("%d of %d charts failed", len(failed), len(jobs))
	}
	return nil
}

// featureGenerator builds charts with the settings resolved for each
// feature. It is shared by the batch pipelines and only reads its maps.
type featureGenerator struct {
	report   *model.Report
	settings map[string]chartSettings
	logger   *slog.Logger
}

func (g *featureGenerator) forFeature(feature string) *visualizer.Visualizer {
	return visualizer.New(g.report, g.settings[feature].options(g.logger)...)
}

// GeneratePlotInfo implements pipeline.Generator.
func (g *featureGenerator) GeneratePlotInfo(feature, prefix string) (visualizer.RenderFunc, *model.Table, error) {
	return g.forFeature(feature).GeneratePlotInfo(feature, prefix)
}

// GenerateHistogramInfo implements pipeline.Generator.
func (g *featureGenerator) GenerateHistogramInfo(feature, prefix string) (visualizer.RenderFunc, *model.Table, error) {
	return g.forFeature(feature).GenerateHistogramInfo(feature, prefix)
}
