// Package log provides the mrviz logger, built on top of the standard slog
// package.
//
// This package extends slog to provide:
//   - Automatic truncation of oversized attribute values
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Compact Values
//
// Reports carry tensors with thousands of elements and layer names that
// can be very long. The CompactHandler shortens such values before they
// reach the output:
//   - strings longer than the limit are cut and marked with their length
//   - numeric slices are shown as their first elements and their length
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Debug("binned feature",
//	    "feature", "per_channel_min",
//	    "values", tensor.Data, // Will be shown as "[0.1, 0.2, 0.3, 0.4, ...] (512)"
//	)
//
//	slog.SetDefault(logger)
package log
