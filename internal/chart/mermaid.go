package chart

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
)

// renderLineMermaid writes a mermaid xychart with one line per complete
// series. Mermaid has no notion of gaps, so series with gaps or non-finite
// values are left out.
func renderLineMermaid(w io.Writer, spec LineSpec) error {
	var lines []string
	for _, s := range spec.Series {
		values, ok := completeValues(s.Values)
		if !ok {
			continue
		}
		lines = append(lines, "    line "+numberList(values))
	}
	if len(lines) == 0 {
		return ErrNoData
	}

	body := xychartHeader(spec.Title, spec.XLabel, spec.YLabel, spec.Categories)
	body = append(body, lines...)
	return writeMermaid(w, body)
}

// renderBarMermaid writes a mermaid xychart bar chart.
func renderBarMermaid(w io.Writer, spec BarSpec) error {
	body := xychartHeader(spec.Title, spec.XLabel, spec.YLabel, spec.Categories)
	body = append(body, "    bar "+numberList(spec.Values))
	return writeMermaid(w, body)
}

func writeMermaid(w io.Writer, body []string) error {
	md := markdown.NewMarkdown(w)
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, strings.Join(body, "\n"))
	return md.Build()
}

func xychartHeader(title, xLabel, yLabel string, categories []string) []string {
	quoted := make([]string, len(categories))
	for i, c := range categories {
		quoted[i] = mermaidQuote(c)
	}
	return []string{
		"xychart-beta",
		"    title " + mermaidQuote(title),
		"    x-axis " + mermaidQuote(xLabel) + " [" + strings.Join(quoted, ", ") + "]",
		"    y-axis " + mermaidQuote(yLabel),
	}
}

// mermaidEscaper rewrites the characters a mermaid string cannot hold.
// Mermaid has no backslash escapes; quotes use its #quot; entity.
var mermaidEscaper = strings.NewReplacer(
	`"`, "#quot;",
	"\n", " ",
	"\r", " ",
	"\t", " ",
)

func mermaidQuote(s string) string {
	return `"` + mermaidEscaper.Replace(s) + `"`
}

func completeValues(values []*float64) ([]float64, bool) {
	out := make([]float64, len(values))
	for i, v := range values {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			return nil, false
		}
		out[i] = *v
	}
	return out, len(out) > 0
}

func numberList(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
