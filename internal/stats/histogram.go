package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNoData is returned when there is nothing to aggregate.
	ErrNoData = errors.New("no finite values to aggregate")

	// ErrInvalidBins is returned for a bin count below one.
	ErrInvalidBins = errors.New("invalid bin count: must be at least 1")
)

// Bin is one histogram bucket covering [Lower, Upper).
// The last bucket of a histogram is closed on both ends.
type Bin struct {
	Lower float64
	Upper float64
	Count int
}

// Finite returns the values that are neither NaN nor infinite.
func Finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Histogram bins values into n equal-width buckets spanning [min, max].
// Non-finite values are dropped. When every value is equal the range is
// widened to [v-0.5, v+0.5], or by a relative margin where 0.5 is below the
// precision of v, so the single value lands in the middle bucket.
func Histogram(values []float64, n int) ([]Bin, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBins, n)
	}

	x := Finite(values)
	if len(x) == 0 {
		return nil, ErrNoData
	}
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		lo, hi = widen(lo)
	}

	edges := make([]float64, n+1)
	if math.IsInf(hi-lo, 0) {
		// The span overflows float64; space the halves and scale back.
		floats.Span(edges, lo/2, hi/2)
		floats.Scale(2, edges)
	} else {
		floats.Span(edges, lo, hi)
	}
	edges[0], edges[n] = lo, hi

	// stat.Histogram counts x < dividers[last]; nudge the last divider up so
	// the maximum lands in the final bucket.
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[n] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, x, nil)

	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{
			Lower: edges[i],
			Upper: edges[i+1],
			Count: int(counts[i]),
		}
	}
	return bins, nil
}

// widen returns a non-empty range centered on v, clamped to finite values.
func widen(v float64) (float64, float64) {
	half := math.Max(0.5, math.Abs(v)*1e-9)
	lo, hi := v-half, v+half
	if math.IsInf(lo, -1) {
		lo = -math.MaxFloat64
	}
	if math.IsInf(hi, 1) {
		hi = math.MaxFloat64
	}
	return lo, hi
}
