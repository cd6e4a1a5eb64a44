// Package model defines the data structures shared by mrviz.
//
// This package contains the following main types:
//   - Report: an ordered list of layers, each with a FeatureSet
//   - Value: a feature value (number, bool, text, tensor, or object)
//   - Tensor: an array-like numeric value, the only plottable kind
//   - Table: headers plus rows, the output of every table generator
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The visualizer, the writers, and the database all need these
// types, so centralizing them prevents import cycles.
//
// Reports are decoded from JSON or YAML with key order preserved, and marshal
// back to a canonical JSON form used for database storage.
package model
