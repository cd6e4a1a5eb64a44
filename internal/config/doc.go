// Package config provides configuration structures and utilities for mrviz.
// It defines the chart and table defaults, the settings file with its
// per-feature overrides, and the environment variables that override both.
package config
