package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nao1215/mrviz/internal/chart"
	"github.com/nao1215/mrviz/internal/model"
	"github.com/nao1215/mrviz/internal/visualizer"
)

// Kind selects the chart a job renders.
type Kind string

const (
	// KindPlot renders a line plot across layers.
	KindPlot Kind = "plot"

	// KindHistogram renders a histogram of all values.
	KindHistogram Kind = "hist"
)

// Job describes one chart file and collects the result of rendering it.
type Job struct {
	// Feature is the feature to draw.
	Feature string

	// Prefix is the layer FQN prefix filter.
	Prefix string

	// Kind selects plot or histogram.
	Kind Kind

	// Format is the chart format written to Path.
	Format chart.Format

	// Path is the output file.
	Path string

	// Render and Table are set by the build step.
	Render visualizer.RenderFunc
	Table  *model.Table

	// Bytes is the size of the written file.
	Bytes int64

	// Err is the first error of the job, if any.
	Err error

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string
}

// NewJobs creates one job per feature, writing to dir with file names of
// the form "<feature>_<kind><ext>".
func NewJobs(features []string, kind Kind, prefix, dir string, format chart.Format) []*Job {
	jobs := make([]*Job, len(features))
	for i, feature := range features {
		jobs[i] = &Job{
			Feature: feature,
			Prefix:  prefix,
			Kind:    kind,
			Format:  format,
		}
	}
	AssignPaths(jobs, dir)
	return jobs
}

// AssignPaths sets the Path of every job to a file in dir named after its
// feature, kind and format. Names that collide after sanitizing, compared
// without case, get a "_2", "_3", ... suffix in job order.
func AssignPaths(jobs []*Job, dir string) {
	used := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		name := FileName(job.Feature, job.Kind, job.Format)
		ext := job.Format.Extension()
		stem := strings.TrimSuffix(name, ext)
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d%s", stem, n, ext)
		}
		used[strings.ToLower(name)] = true
		job.Path = filepath.Join(dir, name)
	}
}

// FileName returns the output file name for a feature chart.
func FileName(feature string, kind Kind, format chart.Format) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, feature)
	return safe + "_" + string(kind) + format.Extension()
}
