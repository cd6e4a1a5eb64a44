package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/mrviz/internal/chart"
	"github.com/nao1215/mrviz/internal/config"
	"github.com/nao1215/mrviz/internal/database"
	mlog "github.com/nao1215/mrviz/internal/log"
	"github.com/nao1215/mrviz/internal/model"
	"github.com/nao1215/mrviz/internal/report"
	"github.com/nao1215/mrviz/internal/visualizer"
	"github.com/spf13/cobra"
)

// errNoReport is returned when neither a report file nor a history
// reference was given.
var errNoReport = errors.New("a report file, \"-\" for stdin, --from-db or --latest is required")

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// stringFlag returns the value of a local or inherited flag, or "" when the
// command does not define it.
func stringFlag(cmd *cobra.Command, name string) string {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String()
	}
	if f := cmd.Root().PersistentFlags().Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

// flagChanged reports whether a flag was set on the command line.
func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// buildConfig creates a Config from the defaults, the settings file, the
// environment and the global flags, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	if err := config.LoadEnv(); err != nil {
		return nil, err
	}

	// If user explicitly specified a settings file path, error if not found.
	// If no path specified, silently use defaults if no file found.
	cfg.ConfigFilePath = stringFlag(cmd, "config")
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if getVerboseFlag(cmd) {
		cfg.Verbose = true
	}
	if stringFlag(cmd, "log-json") == "true" {
		cfg.LogJSON = true
	}
	if dir := stringFlag(cmd, "db-dir"); dir != "" {
		cfg.DBDir = dir
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on the verbosity and log
// format settings. Logs go to stderr so that tables and charts written to
// stdout stay clean.
func setupLogger(cfg *config.Config) *slog.Logger {
	return newLogger(os.Stderr, cfg)
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.LogJSON {
		return mlog.NewJSONLogger(w, cfg.Verbose)
	}
	return mlog.NewLogger(w, cfg.Verbose)
}

// addSourceFlags registers the flags that select a stored report.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("from-db", 0,
		"Load the stored report with this history ID instead of a file")
	cmd.Flags().String("latest", "",
		"Load the most recent stored report saved under this name")
}

// loadReport reads the report selected by the arguments and source flags.
// It returns the report and a short description of where it came from.
func loadReport(ctx context.Context, cmd *cobra.Command, cfg *config.Config, args []string) (*model.Report, string, error) {
	id, err := cmd.Flags().GetInt64("from-db")
	if err != nil {
		return nil, "", err
	}
	latest, err := cmd.Flags().GetString("latest")
	if err != nil {
		return nil, "", err
	}

	if id != 0 || latest != "" {
		if len(args) > 0 {
			return nil, "", errors.New("a report file cannot be combined with --from-db or --latest")
		}
		return loadStoredReport(ctx, cfg, id, latest)
	}

	if len(args) == 0 {
		return nil, "", errNoReport
	}

	path := args[0]
	if path == "-" {
		r, err := model.Load(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("failed to read report from stdin: %w", err)
		}
		return r, "stdin", nil
	}

	r, err := model.LoadFile(path)
	if err != nil {
		return nil, "", err
	}
	return r, path, nil
}

// loadStoredReport reads a report from the history database.
func loadStoredReport(ctx context.Context, cfg *config.Config, id int64, name string) (*model.Report, string, error) {
	store, err := openStore(cfg, false)
	if err != nil {
		return nil, "", err
	}
	defer store.Close()

	if id != 0 {
		r, err := store.GetReportByID(ctx, id)
		if err != nil {
			return nil, "", err
		}
		return r, fmt.Sprintf("history #%d", id), nil
	}

	r, err := store.GetLatestReport(ctx, name)
	if err != nil {
		return nil, "", err
	}
	return r, fmt.Sprintf("history %q", name), nil
}

// openStore opens the history database in cfg.DBDir.
func openStore(cfg *config.Config, create bool) (*database.ReportStore, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = create
	store, err := database.Open(cfg.DBDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return store, nil
}

// openOutput returns the writer for -o. An empty path or "-" selects the
// command's standard output. The returned close function must be called
// once writing is done.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// chartSettings is the resolved configuration for drawing one feature.
type chartSettings struct {
	bins      int
	maxSeries int
	format    chart.Format
	prefix    string
}

// resolveChartSettings combines the per-feature settings with the command
// line. Flags win over the settings file; an output path with a known
// extension decides the format when --format is not given.
func resolveChartSettings(cmd *cobra.Command, cfg *config.Config, feature string) (chartSettings, error) {
	fs := cfg.FeatureSettings(feature)
	s := chartSettings{
		bins:      fs.Bins,
		maxSeries: *fs.MaxChannelSeries,
		prefix:    fs.Prefix,
	}

	if flagChanged(cmd, "bins") {
		s.bins = cfg.NumBins
	}
	if flagChanged(cmd, "max-series") {
		s.maxSeries = cfg.MaxChannelSeries
	}
	if flagChanged(cmd, "prefix") {
		s.prefix = stringFlag(cmd, "prefix")
	}

	formatName := fs.ChartFormat
	if flagChanged(cmd, "format") {
		formatName = cfg.ChartFormat
	} else if f, ok := chart.FormatFromPath(stringFlag(cmd, "output")); ok {
		formatName = string(f)
	}

	format, err := chart.ParseFormat(formatName)
	if err != nil {
		return chartSettings{}, err
	}
	s.format = format
	return s, nil
}

// options returns the visualizer options for s.
func (s chartSettings) options(logger *slog.Logger) []visualizer.Option {
	return []visualizer.Option{
		visualizer.WithFormat(s.format),
		visualizer.WithNumBins(s.bins),
		visualizer.WithMaxChannelSeries(s.maxSeries),
		visualizer.WithLogger(logger),
	}
}

// resolveTableFormat picks the table format: the named flag (skipped when
// formatFlag is empty), then the output file extension, then the
// configuration.
func resolveTableFormat(cmd *cobra.Command, cfg *config.Config, formatFlag string) string {
	if formatFlag != "" && flagChanged(cmd, formatFlag) {
		return stringFlag(cmd, formatFlag)
	}
	switch strings.ToLower(filepath.Ext(stringFlag(cmd, "output"))) {
	case ".xlsx":
		return report.FormatExcel
	case ".md", ".markdown":
		return report.FormatMarkdown
	case ".json":
		return report.FormatJSON
	}
	return cfg.TableFormat
}

// writeTable writes table to the -o destination in the given format.
func writeTable(cmd *cobra.Command, format string, table *model.Table, title string) error {
	output := stringFlag(cmd, "output")

	if format == report.FormatExcel && (output == "" || output == "-") {
		return errors.New("xlsx output requires -o <file>")
	}

	w, closeFn, err := openOutput(cmd, output)
	if err != nil {
		return err
	}

	var writer report.Writer
	if format == report.FormatMarkdown || format == "md" {
		writer = report.NewMarkdownWriter(w, report.WithTitle(title))
	} else {
		writer, err = report.NewWriter(format, w)
		if err != nil {
			_ = closeFn()
			return err
		}
	}

	if _, err := writer.Write(table); err != nil {
		_ = closeFn()
		return fmt.Errorf("failed to write table: %w", err)
	}
	return closeFn()
}
