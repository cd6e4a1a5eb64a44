package chart

import (
	"fmt"
	"io"
)

// RenderLine draws spec as a line chart in the given format.
func RenderLine(w io.Writer, format Format, spec LineSpec) error {
	if !spec.hasData() {
		return ErrNoData
	}
	switch format {
	case FormatHTML:
		return renderLineHTML(w, spec)
	case FormatPNG, FormatSVG:
		return renderLineImage(w, format, spec)
	case FormatMermaid:
		return renderLineMermaid(w, spec)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// RenderBar draws spec as a bar chart in the given format.
func RenderBar(w io.Writer, format Format, spec BarSpec) error {
	if len(spec.Values) == 0 || len(spec.Values) != len(spec.Categories) {
		return ErrNoData
	}
	switch format {
	case FormatHTML:
		return renderBarHTML(w, spec)
	case FormatPNG, FormatSVG:
		return renderBarImage(w, format, spec)
	case FormatMermaid:
		return renderBarMermaid(w, spec)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
