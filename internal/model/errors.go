package model

import "errors"

// Report decoding and construction errors.
// Callers match them with errors.Is; the wrapped message carries the
// offending layer or feature name.
var (
	// ErrEmptyInput is returned when the input contains no document at all.
	ErrEmptyInput = errors.New("empty report input")

	// ErrInvalidReport is returned when the top-level document is not a mapping.
	ErrInvalidReport = errors.New("invalid report: top level must be a mapping")

	// ErrInvalidLayer is returned when a layer entry is not a mapping of features.
	ErrInvalidLayer = errors.New("invalid layer: features must be a mapping")

	// ErrDuplicateLayer is returned when the same FQN appears twice.
	ErrDuplicateLayer = errors.New("duplicate layer")

	// ErrInvalidTensor is returned when tensor data does not match its shape.
	ErrInvalidTensor = errors.New("invalid tensor")
)
