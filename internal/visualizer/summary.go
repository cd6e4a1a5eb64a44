package visualizer

import (
	"errors"
	"fmt"

	"github.com/nao1215/mrviz/internal/model"
	"github.com/nao1215/mrviz/internal/stats"
)

// GenerateSummaryInfo computes count, min, max, mean, stddev and median of
// the elements of feature for each selected layer. A layer whose tensor has
// no finite element keeps its row with a zero count and missing statistics.
func (v *Visualizer) GenerateSummaryInfo(feature, prefix string) (*model.Table, error) {
	layers, err := v.plottableLayers(feature, prefix)
	if err != nil {
		return nil, err
	}

	table := model.NewTable(ColumnIdx, ColumnLayerFQN, ColumnCount,
		"min", "max", "mean", "stddev", "median")

	for i, l := range layers {
		s, err := stats.Summarize(l.Features[feature].Tensor.Data)
		if errors.Is(err, stats.ErrNoData) {
			table.Append(i, l.FQN, 0)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to summarize %s on %s: %w", feature, l.FQN, err)
		}
		table.Append(i, l.FQN, s.Count, s.Min, s.Max, s.Mean, s.StdDev, s.Median)
	}
	return table, nil
}
