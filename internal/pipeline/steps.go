package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/mrviz/internal/model"
	"github.com/nao1215/mrviz/internal/visualizer"
)

// Generator builds chart data for a feature.
// *visualizer.Visualizer implements it.
type Generator interface {
	GeneratePlotInfo(feature, prefix string) (visualizer.RenderFunc, *model.Table, error)
	GenerateHistogramInfo(feature, prefix string) (visualizer.RenderFunc, *model.Table, error)
}

// BuildStep asks the generator for the job's chart.
type BuildStep struct {
	gen Generator
}

// NewBuildStep creates a build step over gen.
func NewBuildStep(gen Generator) *BuildStep {
	return &BuildStep{gen: gen}
}

// Name returns the step name.
func (s *BuildStep) Name() string {
	return "build"
}

// Do fills job.Render and job.Table.
func (s *BuildStep) Do(_ context.Context, job *Job) error {
	var err error
	switch job.Kind {
	case KindPlot:
		job.Render, job.Table, err = s.gen.GeneratePlotInfo(job.Feature, job.Prefix)
	case KindHistogram:
		job.Render, job.Table, err = s.gen.GenerateHistogramInfo(job.Feature, job.Prefix)
	default:
		err = fmt.Errorf("unknown chart kind %q", job.Kind)
	}
	return err
}

// WriteStep renders the chart into the job's output file.
//
// Design decision: We render into a temporary file in the same directory
// and rename it into place, so a failed render never leaves a truncated
// chart behind.
type WriteStep struct {
	logger *slog.Logger
}

// NewWriteStep creates a write step.
func NewWriteStep(logger *slog.Logger) *WriteStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &WriteStep{logger: logger}
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return "write"
}

// Do renders job.Render to job.Path.
func (s *WriteStep) Do(_ context.Context, job *Job) error {
	if job.Render == nil {
		return fmt.Errorf("no chart built for %s", job.Feature)
	}

	dir := filepath.Dir(job.Path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(job.Path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // already renamed on success

	if err := job.Render(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to render %s: %w", job.Feature, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), job.Path); err != nil {
		return fmt.Errorf("failed to write %s: %w", job.Path, err)
	}

	if info, err := os.Stat(job.Path); err == nil {
		job.Bytes = info.Size()
	}
	s.logger.Debug("chart written", "path", job.Path, "bytes", job.Bytes)
	return nil
}

// DefaultPipeline creates a pipeline with the build and write steps.
func DefaultPipeline(gen Generator, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(NewBuildStep(gen), NewWriteStep(p.logger))
	return p
}
