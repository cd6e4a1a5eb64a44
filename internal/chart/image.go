package chart

import (
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// Image dimensions for png and svg output.
const (
	imageWidth  = 1024
	imageHeight = 512
)

// rendererFor maps an image format to the go-chart renderer provider.
func rendererFor(format Format) gochart.RendererProvider {
	if format == FormatSVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// renderLineImage draws a line chart with go-chart. The x axis is the
// category index; gaps and non-finite values are skipped so each series
// only carries real points.
func renderLineImage(w io.Writer, format Format, spec LineSpec) error {
	series := make([]gochart.Series, 0, len(spec.Series))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range spec.Series {
		var xs, ys []float64
		for i, v := range s.Values {
			if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
				continue
			}
			xs = append(xs, float64(i))
			ys = append(ys, *v)
			lo, hi = math.Min(lo, *v), math.Max(hi, *v)
		}
		if len(xs) == 0 {
			continue
		}
		if len(xs) == 1 {
			// go-chart draws nothing for a one-point line; a flat segment
			// across the point keeps it visible.
			xs = []float64{xs[0] - 0.25, xs[0] + 0.25}
			ys = []float64{ys[0], ys[0]}
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
		})
	}
	if len(series) == 0 {
		return ErrNoData
	}

	graph := gochart.Chart{
		Title:  spec.Title,
		Width:  imageWidth,
		Height: imageHeight,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:  spec.XLabel,
			Ticks: categoryTicks(spec.Categories),
		},
		YAxis: gochart.YAxis{
			Name: spec.YLabel,
		},
		Series: series,
	}
	if hi-lo == 0 {
		// go-chart rejects a zero y-range, so a flat line gets one unit of
		// headroom on each side.
		graph.YAxis.Range = &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	if len(series) > 1 {
		graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	}

	if err := graph.Render(rendererFor(format), w); err != nil {
		return fmt.Errorf("failed to render line chart: %w", err)
	}
	return nil
}

// renderBarImage draws a bar chart with go-chart.
func renderBarImage(w io.Writer, format Format, spec BarSpec) error {
	bars := make([]gochart.Value, len(spec.Values))
	top := 0.0
	for i, v := range spec.Values {
		bars[i] = gochart.Value{Value: v, Label: spec.Categories[i]}
		top = math.Max(top, v)
	}
	if top == 0 {
		top = 1
	}

	graph := gochart.BarChart{
		Title:    spec.Title,
		Width:    imageWidth,
		Height:   imageHeight,
		BarWidth: barWidth(len(bars)),
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40},
		},
		// Counts start at zero; equal bars would otherwise leave an empty
		// y-range.
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: top},
		},
		Bars: bars,
	}

	if err := graph.Render(rendererFor(format), w); err != nil {
		return fmt.Errorf("failed to render bar chart: %w", err)
	}
	return nil
}

// categoryTicks labels the integer x positions with category names.
// Long axes are thinned to at most maxTicks labels. Unlabeled ticks half a
// step outside the first and last category set the x-range, which keeps it
// non-zero for a single category.
func categoryTicks(categories []string) []gochart.Tick {
	const maxTicks = 20
	step := 1
	if len(categories) > maxTicks {
		step = (len(categories) + maxTicks - 1) / maxTicks
	}
	ticks := make([]gochart.Tick, 0, len(categories)/step+3)
	ticks = append(ticks, gochart.Tick{Value: -0.5})
	for i := 0; i < len(categories); i += step {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: categories[i]})
	}
	ticks = append(ticks, gochart.Tick{Value: float64(len(categories)) - 0.5})
	return ticks
}

// barWidth fits the bars into the image width.
func barWidth(n int) int {
	w := imageWidth / (n + 1) * 2 / 3
	if w < 4 {
		return 4
	}
	if w > 80 {
		return 80
	}
	return w
}
