// Package report provides table output in several formats.
//
// This package contains writers for the tables produced by the visualizer:
//   - TextWriter: bordered text tables for terminal display
//   - MarkdownWriter: GitHub Flavored Markdown tables
//   - JSONWriter: list-of-lists records for tool integration
//   - ExcelWriter: an .xlsx workbook with one sheet per table
//
// Design decision: We separate table writing from table construction (which
// is in the visualizer package) to follow the single responsibility
// principle. This allows adding new output formats without modifying the
// generators.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
