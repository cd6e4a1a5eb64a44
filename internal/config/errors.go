package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidNumBins is returned when the bin count is outside 1..MaxNumBins.
	ErrInvalidNumBins = errors.New("invalid number of bins: must be between 1 and 1000")

	// ErrInvalidMaxChannelSeries is returned for a negative channel series cap.
	ErrInvalidMaxChannelSeries = errors.New("invalid max channel series: must be non-negative")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrUnsupportedChartFormat is returned for an unknown chart format.
	ErrUnsupportedChartFormat = errors.New("unsupported chart format: use html, png, svg or mermaid")

	// ErrUnsupportedTableFormat is returned for an unknown table format.
	ErrUnsupportedTableFormat = errors.New("unsupported table format: use text, markdown, json or xlsx")

	// ErrInvalidSettings is returned when the settings file fails validation.
	ErrInvalidSettings = errors.New("invalid settings file")

	// ErrInvalidEnv is returned when an MRVIZ_* variable cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")
)
