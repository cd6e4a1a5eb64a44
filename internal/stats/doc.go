// Package stats holds the small amount of numeric aggregation mrviz needs to
// present data: equal-width histogram bins and per-layer summary rows.
//
// Binning is delegated to gonum's stat.Histogram and the summary statistics to
// montanaflynn/stats; this package only prepares the inputs (finite values,
// sorted order, bin edges) those libraries expect.
package stats
