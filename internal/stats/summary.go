package stats

import (
	"github.com/montanaflynn/stats"
)

// Summary describes the distribution of one layer's feature values.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Median float64
}

// Summarize computes a Summary over the finite values.
func Summarize(values []float64) (Summary, error) {
	data := stats.Float64Data(Finite(values))
	if data.Len() == 0 {
		return Summary{}, ErrNoData
	}

	var s Summary
	var err error
	s.Count = data.Len()

	if s.Min, err = data.Min(); err != nil {
		return Summary{}, err
	}
	if s.Max, err = data.Max(); err != nil {
		return Summary{}, err
	}
	if s.Mean, err = data.Mean(); err != nil {
		return Summary{}, err
	}
	if s.StdDev, err = data.StandardDeviation(); err != nil {
		return Summary{}, err
	}
	if s.Median, err = data.Median(); err != nil {
		return Summary{}, err
	}
	return s, nil
}
