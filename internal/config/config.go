package config

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/nao1215/mrviz/internal/chart"
	"github.com/nao1215/mrviz/internal/report"
)

// Default configuration values.
const (
	// DefaultNumBins is the number of equal-width histogram bins.
	// Ten bins keep the bar chart readable for the few thousand values a
	// per-channel feature typically has across a model.
	DefaultNumBins = 10

	// DefaultMaxChannelSeries caps the per-channel lines drawn in a plot.
	// Wide layers have hundreds of channels; beyond a handful of lines the
	// chart becomes unreadable and the channel mean line carries the trend.
	DefaultMaxChannelSeries = 8

	// DefaultConcurrency is the number of charts rendered at once by the
	// batch commands. PNG rendering is CPU bound, so a small pool is enough.
	DefaultConcurrency = 4

	// DefaultChartFormat is the chart output format.
	DefaultChartFormat = string(chart.FormatHTML)

	// DefaultTableFormat is the table output format.
	DefaultTableFormat = report.FormatText

	// AppName is the application name used for XDG directory paths.
	AppName = "mrviz"

	// MaxNumBins bounds the histogram bin count.
	MaxNumBins = 1000
)

// Config holds all configuration options for mrviz.
// This struct is populated from defaults, the settings file, the
// environment and CLI flags, in that order, and passed to the commands
// rather than kept in global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. Per-feature overrides live in the settings file (File)
// and are resolved on demand with FeatureSettings.
type Config struct {
	// NumBins is the histogram bin count.
	NumBins int

	// MaxChannelSeries is the number of per-channel lines in a plot.
	// Zero draws only the channel mean.
	MaxChannelSeries int

	// ChartFormat is one of chart.Formats().
	ChartFormat string

	// TableFormat is one of report.Formats().
	TableFormat string

	// Concurrency is the number of charts rendered in parallel.
	Concurrency int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogJSON writes log records as JSON lines instead of text.
	LogJSON bool

	// ConfigFilePath is the path to the settings file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// Settings holds the settings file, if one was loaded.
	Settings *File

	// DBDir is the directory of the report history database.
	// Defaults to the XDG data directory (~/.local/share/mrviz on Linux).
	DBDir string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because most defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		NumBins:          DefaultNumBins,
		MaxChannelSeries: DefaultMaxChannelSeries,
		ChartFormat:      DefaultChartFormat,
		TableFormat:      DefaultTableFormat,
		Concurrency:      DefaultConcurrency,
		DBDir:            XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for mrviz.
// On Linux: ~/.local/share/mrviz
// On macOS: ~/Library/Application Support/mrviz
// On Windows: %LOCALAPPDATA%\mrviz
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for mrviz.
// On Linux: ~/.config/mrviz
// On macOS: ~/Library/Application Support/mrviz
// On Windows: %APPDATA%\mrviz
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.NumBins < 1 || c.NumBins > MaxNumBins {
		return ErrInvalidNumBins
	}

	if c.MaxChannelSeries < 0 {
		return ErrInvalidMaxChannelSeries
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if _, err := chart.ParseFormat(c.ChartFormat); err != nil {
		return ErrUnsupportedChartFormat
	}

	if !isTableFormat(c.TableFormat) {
		return ErrUnsupportedTableFormat
	}

	return nil
}

// FeatureSettings returns the settings for one feature: the values of c
// overridden by that feature's entry in the settings file.
// The file defaults are already folded into c by ApplyFile, so only the
// default prefix is taken from them here; this keeps environment overrides
// above the file defaults.
func (c *Config) FeatureSettings(feature string) FeatureConfig {
	maxSeries := c.MaxChannelSeries
	result := FeatureConfig{
		Bins:             c.NumBins,
		ChartFormat:      c.ChartFormat,
		MaxChannelSeries: &maxSeries,
	}
	if c.Settings == nil {
		return result
	}
	result.Prefix = c.Settings.Defaults.Prefix
	if fc, ok := c.Settings.Features[feature]; ok {
		result = result.merge(fc)
	}
	return result
}

func isTableFormat(s string) bool {
	for _, f := range report.Formats() {
		if s == f {
			return true
		}
	}
	return false
}
