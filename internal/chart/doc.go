// Package chart renders line and bar charts for mrviz.
//
// A chart is described by a format-independent spec (LineSpec or BarSpec) and
// rendered by RenderLine or RenderBar in one of several formats:
//   - html: an interactive go-echarts page
//   - png, svg: static images drawn by go-chart
//   - mermaid: a fenced xychart-beta block for Markdown documents
//
// Design decision: We keep the spec types free of any rendering library so
// the visualizer can build a chart once and the caller can pick the output
// format late (from a flag or from the output file extension).
package chart
