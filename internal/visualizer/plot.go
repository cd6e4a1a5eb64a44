package visualizer

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/mrviz/internal/chart"
	"github.com/nao1215/mrviz/internal/model"
)

// MeanSeriesName names the series that averages all channels of a layer.
const MeanSeriesName = "mean"

// GeneratePlotInfo builds a line plot of feature across the selected layers.
//
// A layer-level feature (one element per layer) gives the table
// idx, layer_fqn, feature and a single series. A channel-level feature gives
// the table idx, layer_fqn, channel, feature with one row per channel, and
// the series are the channel mean of each layer plus one line for each of
// the first channels. A layer with fewer channels leaves a gap in the lines
// of the channels it lacks.
func (v *Visualizer) GeneratePlotInfo(feature, prefix string) (RenderFunc, *model.Table, error) {
	layers, err := v.plottableLayers(feature, prefix)
	if err != nil {
		return nil, nil, err
	}

	categories := make([]string, len(layers))
	for i, l := range layers {
		categories[i] = l.FQN
	}
	spec := chart.LineSpec{
		Title:      chart.Humanize(feature),
		XLabel:     ColumnLayerFQN,
		YLabel:     feature,
		Categories: categories,
	}

	var table *model.Table
	if layerLevel(layers, feature) {
		table, spec.Series = layerLevelPlot(layers, feature)
		spec.Subtitle = "per layer"
	} else {
		table, spec.Series = v.channelLevelPlot(layers, feature)
		spec.Subtitle = "per channel"
	}

	v.logger.Debug("built plot",
		"feature", feature, "prefix", prefix, "layers", len(layers), "series", len(spec.Series))

	format := v.format
	render := func(w io.Writer) error {
		return chart.RenderLine(w, format, spec)
	}
	return render, table, nil
}

// GeneratePlotVisualization renders the plot of feature to w.
func (v *Visualizer) GeneratePlotVisualization(w io.Writer, feature, prefix string) error {
	render, _, err := v.GeneratePlotInfo(feature, prefix)
	if err != nil {
		return err
	}
	return render(w)
}

// plottableLayers returns the selected layers that carry feature.
// Every one of them must hold a tensor.
func (v *Visualizer) plottableLayers(feature, prefix string) ([]*model.Layer, error) {
	if feature == "" {
		return nil, ErrFeatureRequired
	}

	var layers []*model.Layer
	for _, l := range v.report.FilterByPrefix(prefix) {
		value, ok := l.Features[feature]
		if !ok {
			continue
		}
		if !value.IsPlottable() {
			return nil, fmt.Errorf("%w: %s is a %s on %s", ErrNotPlottable, feature, value.Kind, l.FQN)
		}
		layers = append(layers, l)
	}

	if len(layers) == 0 {
		if prefix != "" {
			return nil, fmt.Errorf("%w: %s under prefix %q", ErrFeatureNotFound, feature, prefix)
		}
		return nil, fmt.Errorf("%w: %s", ErrFeatureNotFound, feature)
	}
	return layers, nil
}

// layerLevel reports whether every occurrence of feature has one element.
func layerLevel(layers []*model.Layer, feature string) bool {
	for _, l := range layers {
		if !l.Features[feature].Tensor.IsScalar() {
			return false
		}
	}
	return true
}

func layerLevelPlot(layers []*model.Layer, feature string) (*model.Table, []chart.Series) {
	table := model.NewTable(ColumnIdx, ColumnLayerFQN, feature)
	series := chart.Series{Name: feature, Values: make([]*float64, len(layers))}

	for i, l := range layers {
		x := l.Features[feature].Tensor.Data[0]
		table.Append(i, l.FQN, x)
		series.Values[i] = chart.Point(x)
	}
	return table, []chart.Series{series}
}

func (v *Visualizer) channelLevelPlot(layers []*model.Layer, feature string) (*model.Table, []chart.Series) {
	table := model.NewTable(ColumnIdx, ColumnLayerFQN, ColumnChannel, feature)

	widest := 0
	for _, l := range layers {
		widest = max(widest, l.Features[feature].Tensor.Channels())
	}
	lines := min(widest, v.maxChannelSeries)

	mean := chart.Series{Name: MeanSeriesName, Values: make([]*float64, len(layers))}
	perChannel := make([]chart.Series, lines)
	for c := range perChannel {
		perChannel[c] = chart.Series{
			Name:   "channel " + strconv.Itoa(c),
			Values: make([]*float64, len(layers)),
		}
	}

	for i, l := range layers {
		t := l.Features[feature].Tensor
		var sum float64
		var n int
		for c := range t.Channels() {
			x, ok := t.ChannelMean(c)
			if !ok {
				continue
			}
			table.Append(table.Len(), l.FQN, c, x)
			sum += x
			n++
			if c < lines {
				perChannel[c].Values[i] = chart.Point(x)
			}
		}
		if n > 0 {
			mean.Values[i] = chart.Point(sum / float64(n))
		}
	}

	return table, append([]chart.Series{mean}, perChannel...)
}
