package visualizer

import (
	"fmt"
	"io"
	"slices"

	"github.com/nao1215/mrviz/internal/model"
	"github.com/nao1215/mrviz/internal/report"
)

// Fixed leading columns of the generated tables.
const (
	ColumnIdx      = "idx"
	ColumnLayerFQN = "layer_fqn"
	ColumnType     = "type"
	ColumnShape    = "shape"
	ColumnChannel  = "channel"
)

// GenerateTableInfo builds the layer table and its formatted string.
//
// The columns are idx, layer_fqn, type, shape and then the sorted feature
// names of the selected layers (only feature when it is set). There is one
// row per selected layer in report order; with a feature filter, layers
// without that feature are skipped. Missing cells are nil.
func (v *Visualizer) GenerateTableInfo(feature, prefix string) (string, *model.Table, error) {
	table, err := v.layerTable(feature, prefix)
	if err != nil {
		return "", nil, err
	}
	s, err := report.Format(table)
	if err != nil {
		return "", nil, fmt.Errorf("failed to format table: %w", err)
	}
	return s, table, nil
}

// GenerateTableVisualization writes the formatted layer table to w.
func (v *Visualizer) GenerateTableVisualization(w io.Writer, feature, prefix string) error {
	s, _, err := v.GenerateTableInfo(feature, prefix)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

// GenerateChannelTableInfo builds the per-channel table and its formatted
// string. The columns are idx, layer_fqn, channel and then the features
// whose tensors hold more than one element. Each layer contributes one row
// per channel of its widest such tensor; tensors with more than one element
// per channel are reduced to the channel mean.
func (v *Visualizer) GenerateChannelTableInfo(feature, prefix string) (string, *model.Table, error) {
	if feature != "" && !v.hasFeature(feature) {
		return "", nil, fmt.Errorf("%w: %s", ErrFeatureNotFound, feature)
	}

	layers := v.report.FilterByPrefix(prefix)
	names := channelFeatureNames(layers, feature)

	headers := append([]string{ColumnIdx, ColumnLayerFQN, ColumnChannel}, names...)
	table := model.NewTable(headers...)

	for _, l := range layers {
		channels := 0
		for _, name := range names {
			if t := channelTensor(l, name); t != nil {
				channels = max(channels, t.Channels())
			}
		}
		for c := range channels {
			row := []any{table.Len(), l.FQN, c}
			for _, name := range names {
				t := channelTensor(l, name)
				if t == nil {
					row = append(row, nil)
					continue
				}
				if mean, ok := t.ChannelMean(c); ok {
					row = append(row, mean)
				} else {
					row = append(row, nil)
				}
			}
			table.Append(row...)
		}
	}

	v.logger.Debug("built channel table",
		"feature", feature, "prefix", prefix, "columns", len(names), "rows", table.Len())

	s, err := report.Format(table)
	if err != nil {
		return "", nil, fmt.Errorf("failed to format table: %w", err)
	}
	return s, table, nil
}

// layerTable builds the table behind GenerateTableInfo.
func (v *Visualizer) layerTable(feature, prefix string) (*model.Table, error) {
	if feature != "" && !v.hasFeature(feature) {
		return nil, fmt.Errorf("%w: %s", ErrFeatureNotFound, feature)
	}

	var layers []*model.Layer
	for _, l := range v.report.FilterByPrefix(prefix) {
		if feature != "" {
			if _, ok := l.Features[feature]; !ok {
				continue
			}
		}
		layers = append(layers, l)
	}

	names := []string{feature}
	if feature == "" {
		names = featureUnion(layers)
	}

	headers := append([]string{ColumnIdx, ColumnLayerFQN, ColumnType, ColumnShape}, names...)
	table := model.NewTable(headers...)

	for i, l := range layers {
		row := make([]any, 0, len(headers))
		row = append(row, i, l.FQN, model.OrMissing(l.Type), model.OrMissing(firstShape(l, names)))
		for _, name := range names {
			if value, ok := l.Features[name]; ok {
				row = append(row, value)
			} else {
				row = append(row, nil)
			}
		}
		table.Append(row...)
	}

	v.logger.Debug("built layer table",
		"feature", feature, "prefix", prefix, "columns", len(names), "rows", table.Len())
	return table, nil
}

// hasFeature reports whether any layer of the report carries feature.
func (v *Visualizer) hasFeature(feature string) bool {
	for _, l := range v.report.Layers() {
		if _, ok := l.Features[feature]; ok {
			return true
		}
	}
	return false
}

// featureUnion returns the sorted union of the feature names of layers.
func featureUnion(layers []*model.Layer) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, l := range layers {
		for name := range l.Features {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// channelFeatureNames returns the sorted features that hold a tensor with
// more than one element on some layer. A non-empty only restricts the
// result to that feature.
func channelFeatureNames(layers []*model.Layer, only string) []string {
	var names []string
	for _, name := range featureUnion(layers) {
		if only != "" && name != only {
			continue
		}
		for _, l := range layers {
			if channelTensor(l, name) != nil {
				names = append(names, name)
				break
			}
		}
	}
	return names
}

// channelTensor returns the layer's tensor for name when it holds more than
// one element.
func channelTensor(l *model.Layer, name string) *model.Tensor {
	value, ok := l.Features[name]
	if !ok || !value.IsPlottable() || value.Tensor.IsScalar() {
		return nil
	}
	return value.Tensor
}

// firstShape returns the shape of the first tensor among names, or "".
func firstShape(l *model.Layer, names []string) string {
	for _, name := range names {
		if value, ok := l.Features[name]; ok && value.IsPlottable() {
			return model.FormatShape(value.Tensor.Shape)
		}
	}
	return ""
}
