package report

import (
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/nao1215/mrviz/internal/model"
)

// TextWriter outputs bordered text tables.
// This format is designed for terminal display.
//
// Design decision: We use olekukonko/tablewriter, which already renders the
// Markdown tables of nao1215/markdown, so text and Markdown output share one
// width-aware layout engine.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the table.
func (w *TextWriter) Write(table *model.Table) (int, error) {
	cw := &countingWriter{w: w.output}
	tw := tablewriter.NewWriter(cw)

	headers := make([]any, len(table.Headers))
	for i, h := range table.Headers {
		headers[i] = h
	}
	tw.Header(headers...)

	if err := tw.Bulk(table.StringRows()); err != nil {
		return cw.n, err
	}
	if err := tw.Render(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// Format renders the table to a string.
func Format(table *model.Table) (string, error) {
	var sb strings.Builder
	if _, err := NewTextWriter(&sb).Write(table); err != nil {
		return "", err
	}
	return sb.String(), nil
}
