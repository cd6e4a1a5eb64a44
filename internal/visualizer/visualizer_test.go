package visualizer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/mrviz/internal/chart"
	"github.com/nao1215/mrviz/internal/model"
)

// createTestReport builds a small report with layer-level, channel-level
// and non-plottable features.
func createTestReport(t *testing.T) *model.Report {
	t.Helper()

	weights, err := model.NewTensor([]int{2, 2}, []float64{1, 3, 5, 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := model.NewReport()
	layers := []*model.Layer{
		{
			FQN:  "block1.conv",
			Type: "Conv2d",
			Features: model.FeatureSet{
				"per_channel_max": model.TensorValue(model.Vector(1, 2, 3)),
				"ratio":           model.TensorValue(model.Scalar(0.5)),
				"recommendation":  model.TextValue("dynamic"),
			},
		},
		{
			FQN: "block1.linear",
			Features: model.FeatureSet{
				"per_channel_max": model.TensorValue(weights),
				"ratio":           model.TensorValue(model.Scalar(1.5)),
			},
		},
		{
			FQN: "block2.linear",
			Features: model.FeatureSet{
				"ratio":          model.TensorValue(model.Scalar(2.5)),
				"recommendation": model.BoolValue(false),
			},
		},
	}
	for _, l := range layers {
		if err := r.Add(l); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return r
}

// TestUniqueModuleFQNs tests the module accessor.
func TestUniqueModuleFQNs(t *testing.T) {
	t.Parallel()

	t.Run("empty report", func(t *testing.T) {
		t.Parallel()
		report, err := model.Parse([]byte("{}"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := New(report).UniqueModuleFQNs(); len(got) != 0 {
			t.Errorf("expected empty set, got %v", got)
		}
	})

	t.Run("nil report", func(t *testing.T) {
		t.Parallel()
		if got := New(nil).UniqueModuleFQNs(); len(got) != 0 {
			t.Errorf("expected empty set, got %v", got)
		}
	})

	t.Run("all layers", func(t *testing.T) {
		t.Parallel()
		v := New(createTestReport(t))
		got := v.SortedModuleFQNs()
		want := []string{"block1.conv", "block1.linear", "block2.linear"}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
}

// TestUniqueFeatureNames tests the feature accessor.
func TestUniqueFeatureNames(t *testing.T) {
	t.Parallel()

	v := New(createTestReport(t))

	t.Run("plottable only", func(t *testing.T) {
		t.Parallel()
		got := v.SortedFeatureNames(true)
		if strings.Join(got, ",") != "per_channel_max,ratio" {
			t.Errorf("unexpected features %v", got)
		}
	})

	t.Run("all features", func(t *testing.T) {
		t.Parallel()
		got := v.UniqueFeatureNames(false)
		if len(got) != 3 {
			t.Errorf("expected 3 features, got %v", got)
		}
		if _, ok := got["recommendation"]; !ok {
			t.Error("expected recommendation in set")
		}
	})
}

// TestGenerateTableInfo tests the layer table.
func TestGenerateTableInfo(t *testing.T) {
	t.Parallel()

	v := New(createTestReport(t))

	t.Run("all features", func(t *testing.T) {
		t.Parallel()

		s, table, err := v.GenerateTableInfo("", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"idx", "layer_fqn", "type", "shape", "per_channel_max", "ratio", "recommendation"}
		if strings.Join(table.Headers, ",") != strings.Join(want, ",") {
			t.Errorf("unexpected headers %v", table.Headers)
		}
		if table.Len() != 3 {
			t.Fatalf("expected 3 rows, got %d", table.Len())
		}

		first := table.Rows[0]
		if first[0] != 0 || first[1] != "block1.conv" || first[2] != "Conv2d" || first[3] != "[3]" {
			t.Errorf("unexpected first row %v", first)
		}
		if table.Rows[1][2] != model.MissingCell {
			t.Errorf("expected missing type marker, got %v", table.Rows[1][2])
		}
		if table.Rows[1][3] != "[2, 2]" {
			t.Errorf("expected shape [2, 2], got %v", table.Rows[1][3])
		}
		if table.Rows[2][3] != "[]" {
			t.Errorf("expected 0-dim shape, got %v", table.Rows[2][3])
		}
		if table.Rows[2][4] != nil {
			t.Errorf("expected nil for missing feature, got %v", table.Rows[2][4])
		}
		if !strings.Contains(s, "block2.linear") {
			t.Error("expected formatted string to contain layer")
		}
	})

	t.Run("feature filter skips layers without it", func(t *testing.T) {
		t.Parallel()

		_, table, err := v.GenerateTableInfo("per_channel_max", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(table.Headers) != 5 {
			t.Errorf("expected 5 columns, got %v", table.Headers)
		}
		if table.Len() != 2 {
			t.Errorf("expected 2 rows, got %d", table.Len())
		}
	})

	t.Run("prefix filter", func(t *testing.T) {
		t.Parallel()

		_, table, err := v.GenerateTableInfo("", "block2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.Len() != 1 || table.Rows[0][1] != "block2.linear" {
			t.Errorf("unexpected rows %v", table.Rows)
		}
		if strings.Join(table.Headers[4:], ",") != "ratio,recommendation" {
			t.Errorf("expected only features of block2, got %v", table.Headers)
		}
	})

	t.Run("no matching layers", func(t *testing.T) {
		t.Parallel()

		_, table, err := v.GenerateTableInfo("", "decoder")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.Len() != 0 || len(table.Headers) != 4 {
			t.Errorf("expected headers-only table, got %v", table)
		}
	})

	t.Run("unknown feature", func(t *testing.T) {
		t.Parallel()

		_, _, err := v.GenerateTableInfo("nope", "")
		if !errors.Is(err, ErrFeatureNotFound) {
			t.Errorf("expected ErrFeatureNotFound, got %v", err)
		}
	})
}

// TestGenerateTableVisualization tests writing the formatted table.
func TestGenerateTableVisualization(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := New(createTestReport(t)).GenerateTableVisualization(&buf, "ratio", "block1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "block1.linear") || !strings.Contains(output, "1.5") {
		t.Errorf("unexpected output:\n%s", output)
	}
	if strings.Contains(output, "block2.linear") {
		t.Error("expected block2 to be filtered out")
	}
}

// TestGenerateChannelTableInfo tests the per-channel table.
func TestGenerateChannelTableInfo(t *testing.T) {
	t.Parallel()

	_, table, err := New(createTestReport(t)).GenerateChannelTableInfo("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(table.Headers, ",") != "idx,layer_fqn,channel,per_channel_max" {
		t.Errorf("unexpected headers %v", table.Headers)
	}
	// 3 channels of block1.conv + 2 of block1.linear
	if table.Len() != 5 {
		t.Fatalf("expected 5 rows, got %d", table.Len())
	}
	last := table.Rows[4]
	if last[0] != 4 || last[1] != "block1.linear" || last[2] != 1 || last[3] != 6.0 {
		t.Errorf("unexpected last row %v", last)
	}
}

// TestGeneratePlotInfo tests plot data for both feature shapes.
func TestGeneratePlotInfo(t *testing.T) {
	t.Parallel()

	v := New(createTestReport(t), WithFormat(chart.FormatSVG))

	t.Run("layer level", func(t *testing.T) {
		t.Parallel()

		render, table, err := v.GeneratePlotInfo("ratio", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Join(table.Headers, ",") != "idx,layer_fqn,ratio" {
			t.Errorf("unexpected headers %v", table.Headers)
		}
		if table.Len() != 3 || table.Rows[2][2] != 2.5 {
			t.Errorf("unexpected rows %v", table.Rows)
		}

		var buf bytes.Buffer
		if err := render(&buf); err != nil {
			t.Fatalf("render failed: %v", err)
		}
		if !strings.Contains(buf.String(), "<svg") {
			t.Error("expected svg output")
		}
	})

	t.Run("channel level", func(t *testing.T) {
		t.Parallel()

		_, table, err := v.GeneratePlotInfo("per_channel_max", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Join(table.Headers, ",") != "idx,layer_fqn,channel,per_channel_max" {
			t.Errorf("unexpected headers %v", table.Headers)
		}
		if table.Len() != 5 {
			t.Errorf("expected 5 rows, got %d", table.Len())
		}
	})

	t.Run("feature required", func(t *testing.T) {
		t.Parallel()
		_, _, err := v.GeneratePlotInfo("", "")
		if !errors.Is(err, ErrFeatureRequired) {
			t.Errorf("expected ErrFeatureRequired, got %v", err)
		}
	})

	t.Run("not plottable", func(t *testing.T) {
		t.Parallel()
		_, _, err := v.GeneratePlotInfo("recommendation", "")
		if !errors.Is(err, ErrNotPlottable) {
			t.Errorf("expected ErrNotPlottable, got %v", err)
		}
	})

	t.Run("not under prefix", func(t *testing.T) {
		t.Parallel()
		_, _, err := v.GeneratePlotInfo("per_channel_max", "block2")
		if !errors.Is(err, ErrFeatureNotFound) {
			t.Errorf("expected ErrFeatureNotFound, got %v", err)
		}
	})
}

// TestChannelLevelSeries tests the mean series and channel gaps.
func TestChannelLevelSeries(t *testing.T) {
	t.Parallel()

	v := New(createTestReport(t), WithMaxChannelSeries(8))
	layers, err := v.plottableLayers("per_channel_max", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, series := v.channelLevelPlot(layers, "per_channel_max")
	// mean + 3 channels
	if len(series) != 4 {
		t.Fatalf("expected 4 series, got %d", len(series))
	}
	if series[0].Name != MeanSeriesName {
		t.Errorf("expected mean series first, got %s", series[0].Name)
	}
	if *series[0].Values[0] != 2 || *series[0].Values[1] != 4 {
		t.Errorf("unexpected mean values %v, %v", *series[0].Values[0], *series[0].Values[1])
	}
	if series[3].Values[1] != nil {
		t.Error("expected gap for channel 2 of block1.linear")
	}

	capped := New(createTestReport(t), WithMaxChannelSeries(1))
	_, series = capped.channelLevelPlot(layers, "per_channel_max")
	if len(series) != 2 {
		t.Errorf("expected 2 series with cap 1, got %d", len(series))
	}
}

// TestGenerateHistogramInfo tests histogram binning over the pooled values.
func TestGenerateHistogramInfo(t *testing.T) {
	t.Parallel()

	v := New(createTestReport(t), WithNumBins(3), WithFormat(chart.FormatMermaid))
	render, table, err := v.GenerateHistogramInfo("per_channel_max", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(table.Headers, ",") != "idx,lower,upper,count" {
		t.Errorf("unexpected headers %v", table.Headers)
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 bins, got %d", table.Len())
	}

	total := 0
	for _, row := range table.Rows {
		total += row[3].(int)
	}
	if total != 7 {
		t.Errorf("expected 7 values binned, got %d", total)
	}

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "bar [") {
		t.Errorf("expected mermaid bar chart, got %s", buf.String())
	}
}

// TestGenerateHistogramVisualization tests the unknown feature path.
func TestGenerateHistogramVisualization(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := New(createTestReport(t)).GenerateHistogramVisualization(&buf, "nope", "")
	if !errors.Is(err, ErrFeatureNotFound) {
		t.Errorf("expected ErrFeatureNotFound, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("expected nothing written on error")
	}
}

// TestGeneratePlotVisualization tests rendering straight to a writer.
func TestGeneratePlotVisualization(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := New(createTestReport(t)).GeneratePlotVisualization(&buf, "ratio", "block1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "<html") {
		t.Error("expected html output by default")
	}
}

// TestGenerateSummaryInfo tests per-layer statistics.
func TestGenerateSummaryInfo(t *testing.T) {
	t.Parallel()

	table, err := New(createTestReport(t)).GenerateSummaryInfo("per_channel_max", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	row := table.Rows[1]
	if row[2] != 4 || row[3] != 1.0 || row[4] != 7.0 || row[5] != 4.0 {
		t.Errorf("unexpected summary row %v", row)
	}
}

// singleFeatureReport builds a one-feature report from the given tensors.
func singleFeatureReport(t *testing.T, feature string, tensors map[string]*model.Tensor) *model.Report {
	t.Helper()

	r := model.NewReport()
	for _, fqn := range []string{"block1.conv", "block1.linear", "block2.linear"} {
		tensor, ok := tensors[fqn]
		if !ok {
			continue
		}
		layer := &model.Layer{FQN: fqn, Features: model.FeatureSet{feature: model.TensorValue(tensor)}}
		if err := r.Add(layer); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return r
}

// TestImageChartsOfDegenerateData tests png and svg output where the data
// spans no range: one layer, equal bin counts and a single bin.
func TestImageChartsOfDegenerateData(t *testing.T) {
	t.Parallel()

	for _, format := range []chart.Format{chart.FormatPNG, chart.FormatSVG} {
		t.Run(string(format)+" single layer plot", func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			v := New(createTestReport(t), WithFormat(format))
			if err := v.GeneratePlotVisualization(&buf, "per_channel_max", "block1.conv"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if buf.Len() == 0 {
				t.Error("expected chart output")
			}
		})

		t.Run(string(format)+" equal bin counts", func(t *testing.T) {
			t.Parallel()
			r := singleFeatureReport(t, "x", map[string]*model.Tensor{
				"block1.conv": model.Vector(0, 1, 2, 3),
			})
			var buf bytes.Buffer
			v := New(r, WithFormat(format), WithNumBins(4))
			if err := v.GenerateHistogramVisualization(&buf, "x", ""); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})

		t.Run(string(format)+" one bin", func(t *testing.T) {
			t.Parallel()
			r := singleFeatureReport(t, "x", map[string]*model.Tensor{
				"block1.conv": model.Vector(1, 2, 3),
			})
			var buf bytes.Buffer
			v := New(r, WithFormat(format), WithNumBins(1))
			if err := v.GenerateHistogramVisualization(&buf, "x", ""); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

// TestHistogramOfExtremeValues tests values whose span exceeds float64.
func TestHistogramOfExtremeValues(t *testing.T) {
	t.Parallel()

	r := singleFeatureReport(t, "x", map[string]*model.Tensor{
		"block1.conv": model.Vector(-1e308, 1e308),
	})
	_, table, err := New(r, WithNumBins(4)).GenerateHistogramInfo("x", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 4 {
		t.Fatalf("expected 4 bins, got %d", table.Len())
	}
	if table.Rows[0][1] != -1e308 || table.Rows[3][2] != 1e308 {
		t.Errorf("unexpected bin edges %v ... %v", table.Rows[0], table.Rows[3])
	}
}

// TestChannelTableOfEmptyTensor tests that an empty tensor adds no rows,
// whatever its leading dimension.
func TestChannelTableOfEmptyTensor(t *testing.T) {
	t.Parallel()

	empty, err := model.NewTensor([]int{3000000, 0}, []float64{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := singleFeatureReport(t, "x", map[string]*model.Tensor{
		"block1.conv":   empty,
		"block1.linear": model.Vector(1, 2),
	})

	_, table, err := New(r).GenerateChannelTableInfo("x", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 2 {
		t.Errorf("expected 2 rows from block1.linear, got %d", table.Len())
	}

	_, table, err = New(r).GeneratePlotInfo("x", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 2 {
		t.Errorf("expected 2 plot rows, got %d", table.Len())
	}
}
