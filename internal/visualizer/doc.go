// Package visualizer turns a model report into tables and charts.
//
// A Visualizer holds one report and never mutates it. It answers two
// questions about the report (which layers and which features it carries)
// and builds presentation output from it:
//
//   - tables of feature values, one row per layer or per channel
//   - line plots of a feature across layers
//   - histograms of all values of a feature
//   - per-layer summary statistics
//
// Every generator accepts a feature name and a layer FQN prefix. The prefix
// selects the layers whose FQN starts with it; the empty prefix selects all.
//
// The *Info generators return the data without side effects. The
// *Visualization generators write the rendered result to an io.Writer.
package visualizer
