package visualizer

import (
	"io"
	"log/slog"

	"github.com/nao1215/mrviz/internal/chart"
	"github.com/nao1215/mrviz/internal/model"
)

const (
	// DefaultNumBins is the number of histogram bins.
	DefaultNumBins = 10

	// DefaultMaxChannelSeries caps the per-channel lines of a plot.
	DefaultMaxChannelSeries = 8
)

// RenderFunc draws a chart to w. Calling it has no other side effect.
type RenderFunc func(w io.Writer) error

// Visualizer builds tables and charts from a report.
// It is safe for concurrent use because the report is read-only.
type Visualizer struct {
	report           *model.Report
	format           chart.Format
	numBins          int
	maxChannelSeries int
	logger           *slog.Logger
}

// Option configures a Visualizer.
type Option func(*Visualizer)

// WithFormat sets the chart format used by the render functions.
func WithFormat(format chart.Format) Option {
	return func(v *Visualizer) {
		v.format = format
	}
}

// WithNumBins sets the histogram bin count. Values below one are ignored.
func WithNumBins(n int) Option {
	return func(v *Visualizer) {
		if n > 0 {
			v.numBins = n
		}
	}
}

// WithMaxChannelSeries sets how many per-channel lines a plot draws.
// Zero draws only the channel mean.
func WithMaxChannelSeries(n int) Option {
	return func(v *Visualizer) {
		if n >= 0 {
			v.maxChannelSeries = n
		}
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Visualizer) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New creates a Visualizer over report. A nil report is treated as empty.
func New(report *model.Report, opts ...Option) *Visualizer {
	if report == nil {
		report = model.NewReport()
	}
	v := &Visualizer{
		report:           report,
		format:           chart.FormatHTML,
		numBins:          DefaultNumBins,
		maxChannelSeries: DefaultMaxChannelSeries,
		logger:           slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Report returns the report being visualized.
func (v *Visualizer) Report() *model.Report {
	return v.report
}
