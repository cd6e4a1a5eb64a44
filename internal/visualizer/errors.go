package visualizer

import "errors"

var (
	// ErrFeatureRequired is returned when a plot or histogram is requested
	// without a feature name.
	ErrFeatureRequired = errors.New("a feature name is required")

	// ErrFeatureNotFound is returned when no selected layer carries the feature.
	ErrFeatureNotFound = errors.New("feature not found")

	// ErrNotPlottable is returned when a feature has a value that is not a
	// tensor on at least one selected layer.
	ErrNotPlottable = errors.New("feature is not plottable")
)
