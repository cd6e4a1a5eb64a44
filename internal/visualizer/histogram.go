package visualizer

import (
	"fmt"
	"io"

	"github.com/nao1215/mrviz/internal/chart"
	"github.com/nao1215/mrviz/internal/model"
	"github.com/nao1215/mrviz/internal/stats"
)

// Columns of the histogram table.
const (
	ColumnLower = "lower"
	ColumnUpper = "upper"
	ColumnCount = "count"
)

// GenerateHistogramInfo bins every element of feature across the selected
// layers into equal-width bins. The table is idx, lower, upper, count with
// one row per bin; the render function draws the counts as a bar chart.
func (v *Visualizer) GenerateHistogramInfo(feature, prefix string) (RenderFunc, *model.Table, error) {
	layers, err := v.plottableLayers(feature, prefix)
	if err != nil {
		return nil, nil, err
	}

	var values []float64
	for _, l := range layers {
		values = append(values, l.Features[feature].Tensor.Data...)
	}

	bins, err := stats.Histogram(values, v.numBins)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to bin %s: %w", feature, err)
	}

	table := model.NewTable(ColumnIdx, ColumnLower, ColumnUpper, ColumnCount)
	spec := chart.BarSpec{
		Title:      chart.Humanize(feature),
		Subtitle:   fmt.Sprintf("%d values in %d bins", len(values), len(bins)),
		XLabel:     feature,
		YLabel:     ColumnCount,
		Categories: make([]string, len(bins)),
		Values:     make([]float64, len(bins)),
	}
	for i, b := range bins {
		table.Append(i, b.Lower, b.Upper, b.Count)
		spec.Categories[i] = binLabel(b, i == len(bins)-1)
		spec.Values[i] = float64(b.Count)
	}

	v.logger.Debug("built histogram",
		"feature", feature, "prefix", prefix, "values", len(values), "bins", len(bins))

	format := v.format
	render := func(w io.Writer) error {
		return chart.RenderBar(w, format, spec)
	}
	return render, table, nil
}

// GenerateHistogramVisualization renders the histogram of feature to w.
func (v *Visualizer) GenerateHistogramVisualization(w io.Writer, feature, prefix string) error {
	render, _, err := v.GenerateHistogramInfo(feature, prefix)
	if err != nil {
		return err
	}
	return render(w)
}

func binLabel(b stats.Bin, last bool) string {
	closing := ")"
	if last {
		closing = "]"
	}
	return "[" + model.FormatNumber(b.Lower) + ", " + model.FormatNumber(b.Upper) + closing
}
