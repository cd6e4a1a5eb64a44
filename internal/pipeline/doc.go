// Package pipeline provides a framework for rendering chart files in
// sequence and in batches.
//
// Every chart file is produced by a Job that passes through a small
// pipeline: the build step asks the visualizer for the chart, and the write
// step renders it to its output file. Each stage is implemented as a Step
// that receives the job and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long batches
//
// The BatchRenderer runs many jobs concurrently with errgroup, for example
// one plot per feature of a report.
package pipeline
