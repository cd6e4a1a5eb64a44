package config

// FeatureConfig holds chart settings for a single feature.
// Zero values mean "not set" and fall through to the next layer.
type FeatureConfig struct {
	// Bins overrides the histogram bin count.
	Bins int `yaml:"bins,omitempty" validate:"omitempty,min=1,max=1000"`

	// ChartFormat overrides the chart format.
	ChartFormat string `yaml:"format,omitempty" validate:"omitempty,oneof=html png svg mermaid"`

	// MaxChannelSeries overrides the per-channel line cap. It is a pointer
	// because zero is a meaningful value.
	MaxChannelSeries *int `yaml:"maxChannelSeries,omitempty" validate:"omitempty,min=0,max=256"`

	// Prefix is the default layer prefix filter for the feature.
	Prefix string `yaml:"prefix,omitempty"`
}

// File represents the structure of the .mrviz.yaml settings file.
type File struct {
	// Defaults holds settings applied to every run.
	Defaults FeatureConfig `yaml:"defaults,omitempty"`

	// TableFormat overrides the table output format.
	TableFormat string `yaml:"tableFormat,omitempty" validate:"omitempty,oneof=text markdown json xlsx"`

	// Concurrency overrides the batch render pool size.
	Concurrency int `yaml:"concurrency,omitempty" validate:"omitempty,min=1,max=64"`

	// DBDir overrides the history database directory.
	DBDir string `yaml:"dbDir,omitempty"`

	// Features maps feature names to their settings.
	Features map[string]FeatureConfig `yaml:"features,omitempty" validate:"omitempty,dive"`
}

// merge returns fc with every field set in override replaced.
func (fc FeatureConfig) merge(override FeatureConfig) FeatureConfig {
	if override.Bins != 0 {
		fc.Bins = override.Bins
	}
	if override.ChartFormat != "" {
		fc.ChartFormat = override.ChartFormat
	}
	if override.MaxChannelSeries != nil {
		fc.MaxChannelSeries = override.MaxChannelSeries
	}
	if override.Prefix != "" {
		fc.Prefix = override.Prefix
	}
	return fc
}
