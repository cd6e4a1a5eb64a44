package report

import (
	"io"

	"github.com/nao1215/markdown"

	"github.com/nao1215/mrviz/internal/model"
)

// MarkdownWriter outputs tables in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables and code blocks
// 3. The same builder the chart package uses for mermaid blocks
type MarkdownWriter struct {
	baseWriter

	// title is written as a level-2 heading above the table when set.
	title string
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithTitle adds a heading above the table.
func WithTitle(title string) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.title = title
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the table in Markdown format.
func (w *MarkdownWriter) Write(table *model.Table) (int, error) {
	md := markdown.NewMarkdown(w.output)

	if w.title != "" {
		md.H2(w.title)
		md.PlainText("")
	}

	if table.Len() == 0 {
		md.PlainText("No rows match the given filters.")
		return len(md.String()), md.Build()
	}

	md.Table(markdown.TableSet{
		Header: table.Headers,
		Rows:   table.StringRows(),
	})

	return len(md.String()), md.Build()
}
