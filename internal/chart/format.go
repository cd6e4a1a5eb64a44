package chart

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format selects the chart output format.
type Format string

const (
	// FormatHTML renders an interactive HTML page with go-echarts.
	FormatHTML Format = "html"

	// FormatPNG renders a PNG image with go-chart.
	FormatPNG Format = "png"

	// FormatSVG renders an SVG image with go-chart.
	FormatSVG Format = "svg"

	// FormatMermaid renders a Markdown code block with a mermaid xychart.
	FormatMermaid Format = "mermaid"
)

var (
	// ErrUnsupportedFormat is returned for an unknown chart format.
	ErrUnsupportedFormat = errors.New("unsupported chart format")

	// ErrNoData is returned when a spec has nothing to draw.
	ErrNoData = errors.New("chart has no data")
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatHTML, FormatPNG, FormatSVG, FormatMermaid}
}

// ParseFormat converts a user-supplied name into a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatHTML, FormatPNG, FormatSVG, FormatMermaid:
		return f, nil
	case "md", "markdown":
		return FormatMermaid, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath infers the format from a file extension.
// ok is false when the extension is not recognised.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	switch strings.ToLower(ext) {
	case "html", "htm":
		return FormatHTML, true
	case "png":
		return FormatPNG, true
	case "svg":
		return FormatSVG, true
	case "md", "markdown", "mmd":
		return FormatMermaid, true
	}
	return "", false
}

// Extension returns the file extension (with dot) for the format.
func (f Format) Extension() string {
	if f == FormatMermaid {
		return ".md"
	}
	return "." + string(f)
}
