package chart

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Series is one named line. A nil entry in Values is a gap.
type Series struct {
	Name   string
	Values []*float64
}

// LineSpec describes a line chart over categorical x values.
type LineSpec struct {
	Title      string
	Subtitle   string
	XLabel     string
	YLabel     string
	Categories []string
	Series     []Series
}

// BarSpec describes a bar chart, one bar per category.
type BarSpec struct {
	Title      string
	Subtitle   string
	XLabel     string
	YLabel     string
	Categories []string
	Values     []float64
}

// Point returns a pointer to v, for building Series values.
func Point(v float64) *float64 {
	return &v
}

// hasData reports whether any series has at least one point.
func (s LineSpec) hasData() bool {
	if len(s.Categories) == 0 {
		return false
	}
	for _, series := range s.Series {
		for _, v := range series.Values {
			if v != nil {
				return true
			}
		}
	}
	return false
}

// Humanize turns a feature name such as "per_channel_min" into a chart
// title such as "Per Channel Min".
func Humanize(name string) string {
	words := strings.NewReplacer("_", " ", ".", " ", "-", " ").Replace(name)
	return cases.Title(language.English).String(strings.Join(strings.Fields(words), " "))
}
