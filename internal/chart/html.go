package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// gapValue is how echarts marks a missing point in a line series.
const gapValue = "-"

// renderLineHTML draws a line chart as a self-contained go-echarts page.
func renderLineHTML(w io.Writer, spec LineSpec) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    spec.Title,
			Subtitle: spec.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(len(spec.Series) > 1),
			Top:  "bottom",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: spec.XLabel,
			Type: "category",
			AxisLabel: &opts.AxisLabel{
				Rotate: 45,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: spec.YLabel,
			Type: "value",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "slider",
			Start: 0,
			End:   100,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: spec.Title,
			Width:     "100%",
			Height:    "500px",
		}),
	)

	line.SetXAxis(spec.Categories)
	for _, series := range spec.Series {
		data := make([]opts.LineData, len(series.Values))
		for i, v := range series.Values {
			if v == nil {
				data[i] = opts.LineData{Value: gapValue}
				continue
			}
			data[i] = opts.LineData{Value: *v}
		}
		line.AddSeries(series.Name, data)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render line chart: %w", err)
	}
	return nil
}

// renderBarHTML draws a bar chart as a self-contained go-echarts page.
func renderBarHTML(w io.Writer, spec BarSpec) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    spec.Title,
			Subtitle: spec.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: spec.XLabel,
			Type: "category",
			AxisLabel: &opts.AxisLabel{
				Rotate: 45,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: spec.YLabel,
			Type: "value",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: spec.Title,
			Width:     "100%",
			Height:    "500px",
		}),
	)

	data := make([]opts.BarData, len(spec.Values))
	for i, v := range spec.Values {
		data[i] = opts.BarData{Value: v}
	}
	bar.SetXAxis(spec.Categories).AddSeries(spec.YLabel, data)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render bar chart: %w", err)
	}
	return nil
}
