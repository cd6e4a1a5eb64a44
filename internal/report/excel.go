package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/mrviz/internal/model"
)

// DefaultSheetName is the worksheet name used when none is configured.
const DefaultSheetName = "Report"

// ExcelWriter outputs tables as an .xlsx workbook.
// Numeric cells are written as numbers so they can be sorted and charted
// in a spreadsheet; everything else is written as text.
type ExcelWriter struct {
	baseWriter

	// sheet is the worksheet name.
	sheet string
}

// ExcelWriterOption configures an ExcelWriter.
type ExcelWriterOption func(*ExcelWriter)

// WithSheetName sets the worksheet name.
func WithSheetName(name string) ExcelWriterOption {
	return func(w *ExcelWriter) {
		if name != "" {
			w.sheet = name
		}
	}
}

// NewExcelWriter creates an ExcelWriter that outputs to the given writer.
func NewExcelWriter(output io.Writer, opts ...ExcelWriterOption) *ExcelWriter {
	w := &ExcelWriter{
		baseWriter: newBaseWriter(output),
		sheet:      DefaultSheetName,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the table as a workbook with a single sheet.
func (w *ExcelWriter) Write(table *model.Table) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", w.sheet); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(w.sheet, "A1", &header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		cells := make([]any, len(row))
		for j, c := range row {
			cells[j] = excelCell(c)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(w.sheet, cell, &cells); err != nil {
			return 0, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw := &countingWriter{w: w.output}
	if _, err := f.WriteTo(cw); err != nil {
		return cw.n, fmt.Errorf("failed to write workbook: %w", err)
	}
	return cw.n, nil
}

// excelCell converts a table cell into a value excelize stores natively.
func excelCell(c any) any {
	switch v := c.(type) {
	case nil:
		return nil
	case model.Value:
		switch v.Kind {
		case model.KindNumber:
			return v.Number
		case model.KindBool:
			return v.Bool
		case model.KindTensor:
			if v.Tensor.IsScalar() {
				return v.Tensor.Data[0]
			}
		}
		return v.String()
	case int, int64, float64, bool, string:
		return v
	default:
		return model.CellString(v)
	}
}
