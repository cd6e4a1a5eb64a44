package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/nao1215/mrviz/internal/chart"
	"github.com/nao1215/mrviz/internal/model"
	"github.com/nao1215/mrviz/internal/visualizer"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, job *Job) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, job *Job) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, job)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// errRender is returned by fakeGenerator for the "broken" feature.
var errRender = errors.New("render failed")

// fakeGenerator implements Generator with canned output.
type fakeGenerator struct {
	calls atomic.Int32
}

func (g *fakeGenerator) build(feature string) (visualizer.RenderFunc, *model.Table, error) {
	g.calls.Add(1)
	if feature == "missing" {
		return nil, nil, visualizer.ErrFeatureNotFound
	}
	render := func(w io.Writer) error {
		if feature == "broken" {
			return errRender
		}
		_, err := io.WriteString(w, "chart of "+feature)
		return err
	}
	return render, model.NewTable("idx"), nil
}

func (g *fakeGenerator) GeneratePlotInfo(feature, _ string) (visualizer.RenderFunc, *model.Table, error) {
	return g.build(feature)
}

func (g *fakeGenerator) GenerateHistogramInfo(feature, _ string) (visualizer.RenderFunc, *model.Table, error) {
	return g.build(feature)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	p := New()
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if p.StepCount() != 0 {
		t.Errorf("expected 0 steps, got %d", p.StepCount())
	}
	if p.logger == nil {
		t.Error("expected default logger")
	}
}

// TestPipelineExecute tests step execution order and error handling.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		p := New(WithLogger(discardLogger()))
		for _, name := range []string{"first", "second"} {
			p.AddStep(&mockStep{name: name, doFunc: func(context.Context, *Job) error {
				order = append(order, name)
				return nil
			}})
		}

		job := &Job{Feature: "ratio"}
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("unexpected order %v", order)
		}
		if len(job.PerformedSteps) != 2 {
			t.Errorf("expected 2 performed steps, got %v", job.PerformedSteps)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		stepErr := errors.New("step error")
		failing := &mockStep{name: "failing", doFunc: func(context.Context, *Job) error { return stepErr }}
		after := &mockStep{name: "after"}

		p := New(WithLogger(discardLogger()))
		p.AddSteps(failing, after)

		job := &Job{}
		err := p.Execute(context.Background(), job)
		if !errors.Is(err, stepErr) {
			t.Errorf("expected step error, got %v", err)
		}
		if !errors.Is(job.Err, stepErr) {
			t.Errorf("expected error recorded on job, got %v", job.Err)
		}
		if after.callCount != 0 {
			t.Error("expected later steps to be skipped")
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never"}
		p := New(WithLogger(discardLogger()))
		p.AddStep(step)

		job := &Job{}
		if err := p.Execute(ctx, job); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("expected step not to run")
		}
	})
}

// TestDefaultPipeline tests the build and write steps together.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	p := DefaultPipeline(&fakeGenerator{}, WithLogger(discardLogger()))
	names := p.StepNames()
	if len(names) != 2 || names[0] != "build" || names[1] != "write" {
		t.Fatalf("unexpected steps %v", names)
	}

	t.Run("writes chart file", func(t *testing.T) {
		t.Parallel()

		job := &Job{Feature: "ratio", Kind: KindPlot, Path: filepath.Join(t.TempDir(), "out", "ratio.html")}
		if err := DefaultPipeline(&fakeGenerator{}, WithLogger(discardLogger())).Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(job.Path)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if string(data) != "chart of ratio" {
			t.Errorf("unexpected content %q", data)
		}
		if job.Bytes != int64(len(data)) {
			t.Errorf("expected %d bytes, got %d", len(data), job.Bytes)
		}
	})

	t.Run("failed render leaves no file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		job := &Job{Feature: "broken", Kind: KindHistogram, Path: filepath.Join(dir, "broken.html")}
		err := DefaultPipeline(&fakeGenerator{}, WithLogger(discardLogger())).Execute(context.Background(), job)
		if !errors.Is(err, errRender) {
			t.Fatalf("expected render error, got %v", err)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected empty directory, found %d entries", len(entries))
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		t.Parallel()

		job := &Job{Feature: "ratio", Kind: Kind("pie")}
		if err := DefaultPipeline(&fakeGenerator{}, WithLogger(discardLogger())).Execute(context.Background(), job); err == nil {
			t.Error("expected error for unknown kind")
		}
	})
}

// TestNewJobs tests output file naming.
func TestNewJobs(t *testing.T) {
	t.Parallel()

	jobs := NewJobs([]string{"per_channel_min", "a/b"}, KindHistogram, "enc.", "out", chart.FormatPNG)
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Path != filepath.Join("out", "per_channel_min_hist.png") {
		t.Errorf("unexpected path %q", jobs[0].Path)
	}
	if jobs[1].Path != filepath.Join("out", "a_b_hist.png") {
		t.Errorf("unexpected path %q", jobs[1].Path)
	}
	if jobs[0].Prefix != "enc." || jobs[0].Kind != KindHistogram {
		t.Errorf("unexpected job %+v", jobs[0])
	}
	if got := FileName("ratio", KindPlot, chart.FormatMermaid); got != "ratio_plot.md" {
		t.Errorf("unexpected mermaid file name %q", got)
	}
}

// TestAssignPaths tests that features mapping to one file name get
// distinct paths.
func TestAssignPaths(t *testing.T) {
	t.Parallel()

	t.Run("sanitized names collide", func(t *testing.T) {
		t.Parallel()
		jobs := NewJobs([]string{"a b", "a_b", "a/b", "A_B"}, KindPlot, "", "out", chart.FormatHTML)
		want := []string{"a_b_plot.html", "a_b_plot_2.html", "a_b_plot_3.html", "A_B_plot_4.html"}
		for i, job := range jobs {
			if job.Path != filepath.Join("out", want[i]) {
				t.Errorf("job %d: expected %q, got %q", i, want[i], job.Path)
			}
		}
	})

	t.Run("different formats do not collide", func(t *testing.T) {
		t.Parallel()
		jobs := []*Job{
			{Feature: "a b", Kind: KindHistogram, Format: chart.FormatPNG},
			{Feature: "a_b", Kind: KindHistogram, Format: chart.FormatSVG},
		}
		AssignPaths(jobs, "out")
		if jobs[0].Path != filepath.Join("out", "a_b_hist.png") ||
			jobs[1].Path != filepath.Join("out", "a_b_hist.svg") {
			t.Errorf("unexpected paths %q, %q", jobs[0].Path, jobs[1].Path)
		}
	})

	t.Run("colliding jobs write separate files", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		jobs := NewJobs([]string{"a b", "a_b"}, KindPlot, "", dir, chart.FormatHTML)
		step := NewWriteStep(nil)
		for _, job := range jobs {
			content := job.Feature
			job.Render = func(w io.Writer) error {
				_, err := io.WriteString(w, content)
				return err
			}
			if err := step.Do(context.Background(), job); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		for _, job := range jobs {
			data, err := os.ReadFile(job.Path)
			if err != nil {
				t.Fatalf("failed to read %s: %v", job.Path, err)
			}
			if string(data) != job.Feature {
				t.Errorf("expected %q in %s, got %q", job.Feature, job.Path, data)
			}
		}
	})
}

// TestBatchRendererNew tests the BatchRenderer constructor.
func TestBatchRendererNew(t *testing.T) {
	t.Parallel()

	t.Run("creates renderer with defaults", func(t *testing.T) {
		t.Parallel()
		br := NewBatchRenderer(func() *Pipeline { return New() })
		if br.concurrency != DefaultConcurrency {
			t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, br.concurrency)
		}
		if br.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()
		br := NewBatchRenderer(func() *Pipeline { return New() }, WithConcurrency(0))
		if br.concurrency != DefaultConcurrency {
			t.Errorf("expected concurrency %d, got %d", DefaultConcurrency, br.concurrency)
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()
		br := NewBatchRenderer(func() *Pipeline { return New() }, WithConcurrency(2))
		if br.concurrency != 2 {
			t.Errorf("expected concurrency 2, got %d", br.concurrency)
		}
	})
}

// TestBatchRendererRender tests batch rendering.
func TestBatchRendererRender(t *testing.T) {
	t.Parallel()

	t.Run("renders all jobs and keeps order", func(t *testing.T) {
		t.Parallel()

		gen := &fakeGenerator{}
		br := NewBatchRenderer(
			func() *Pipeline { return DefaultPipeline(gen, WithLogger(discardLogger())) },
			WithConcurrency(2),
			WithBatchLogger(discardLogger()),
		)

		features := []string{"a", "missing", "b", "broken", "c"}
		jobs := NewJobs(features, KindPlot, "", t.TempDir(), chart.FormatHTML)

		got, err := br.Render(context.Background(), jobs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, job := range got {
			if job.Feature != features[i] {
				t.Errorf("job %d: expected %s, got %s", i, features[i], job.Feature)
			}
		}
		if gen.calls.Load() != int32(len(features)) {
			t.Errorf("expected %d builds, got %d", len(features), gen.calls.Load())
		}

		failed := Failed(got)
		if len(failed) != 2 {
			t.Fatalf("expected 2 failed jobs, got %d", len(failed))
		}
		if !errors.Is(failed[0].Err, visualizer.ErrFeatureNotFound) || !errors.Is(failed[1].Err, errRender) {
			t.Errorf("unexpected errors %v, %v", failed[0].Err, failed[1].Err)
		}
		if _, err := os.Stat(got[4].Path); err != nil {
			t.Errorf("expected output for c: %v", err)
		}
	})

	t.Run("callback sees every job", func(t *testing.T) {
		t.Parallel()

		br := NewBatchRenderer(
			func() *Pipeline { return DefaultPipeline(&fakeGenerator{}, WithLogger(discardLogger())) },
			WithBatchLogger(discardLogger()),
		)
		jobs := NewJobs([]string{"a", "b", "c"}, KindHistogram, "", t.TempDir(), chart.FormatSVG)

		var mu sync.Mutex
		seen := make(map[int]bool)
		err := br.RenderWithCallback(context.Background(), jobs, func(_ *Job, index int) {
			mu.Lock()
			defer mu.Unlock()
			seen[index] = true
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(seen) != 3 {
			t.Errorf("expected 3 callbacks, got %d", len(seen))
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		br := NewBatchRenderer(
			func() *Pipeline { return DefaultPipeline(&fakeGenerator{}, WithLogger(discardLogger())) },
			WithBatchLogger(discardLogger()),
		)
		jobs := NewJobs([]string{"a", "b"}, KindPlot, "", t.TempDir(), chart.FormatHTML)

		_, err := br.Render(ctx, jobs)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		for _, job := range jobs {
			if !errors.Is(job.Err, context.Canceled) {
				t.Errorf("expected job %s to be cancelled, got %v", job.Feature, job.Err)
			}
		}
	})
}
