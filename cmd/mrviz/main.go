// Package main provides the entry point for the mrviz CLI.
//
// mrviz turns the per-layer feature reports written by model-analysis
// detectors into tables, line plots and histograms.
//
// Usage:
//
//	mrviz table -f per_channel_min report.json
//	mrviz plot -f per_channel_min -o min.html report.json
//	mrviz hist --all-features --out-dir charts report.json
//
// See --help for all available options.
package main

// main is the entry point for mrviz.
func main() {
	Execute()
}
