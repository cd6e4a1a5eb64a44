package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default settings file name.
const DefaultConfigFile = ".mrviz.yaml"

// ErrConfigNotFound is returned when the settings file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

var (
	validate *validator.Validate
	once     sync.Once
)

// getValidator returns the shared struct validator.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks the settings file against its struct tags.
// The first failing field is reported, wrapped in ErrInvalidSettings.
func (f *File) Validate() error {
	err := getValidator().Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return fmt.Errorf("%w: field %s failed on the %q rule", ErrInvalidSettings, e.Namespace(), e.Tag())
	}
	return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
}

// LoadConfigFile loads and validates the settings file at path.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	if cf.Features == nil {
		cf.Features = make(map[string]FeatureConfig)
	}

	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the settings file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .mrviz.yaml in the current directory
// 3. Look for .mrviz.yaml in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the settings file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ApplyFile overlays the settings file on c and keeps it for per-feature
// lookups.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.Settings = f

	d := f.Defaults
	if d.Bins != 0 {
		c.NumBins = d.Bins
	}
	if d.ChartFormat != "" {
		c.ChartFormat = d.ChartFormat
	}
	if d.MaxChannelSeries != nil {
		c.MaxChannelSeries = *d.MaxChannelSeries
	}
	if f.TableFormat != "" {
		c.TableFormat = f.TableFormat
	}
	if f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
}
