package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/mrviz/internal/model"
)

// JSONWriter outputs tables in JSON format.
// This format is designed for tool integration and programmatic processing.
// The document is the list-of-lists form: the header row first, then one
// array per data row.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. model.Value already implements json.Marshaler
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the table records in JSON format.
func (w *JSONWriter) Write(table *model.Table) (int, error) {
	return w.writeJSON(jsonRecords(table))
}

// jsonRecords copies the table records, replacing NaN and infinite float
// cells with the strings model.JSONNumber gives for them.
func jsonRecords(table *model.Table) [][]any {
	records := table.Records()
	out := make([][]any, len(records))
	for i, row := range records {
		cells := make([]any, len(row))
		for j, c := range row {
			if f, ok := c.(float64); ok {
				c = model.JSONNumber(f)
			}
			cells[j] = c
		}
		out[i] = cells
	}
	return out
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
