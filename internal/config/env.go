package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvNumBins          = "MRVIZ_BINS"
	EnvMaxChannelSeries = "MRVIZ_MAX_CHANNEL_SERIES"
	EnvChartFormat      = "MRVIZ_CHART_FORMAT"
	EnvTableFormat      = "MRVIZ_TABLE_FORMAT"
	EnvConcurrency      = "MRVIZ_CONCURRENCY"
	EnvDBDir            = "MRVIZ_DB_DIR"
	EnvVerbose          = "MRVIZ_VERBOSE"
	EnvLogJSON          = "MRVIZ_LOG_JSON"
)

// LoadEnv loads variables from the given .env files (default ".env") into
// the process environment. Variables that are already set are kept, and
// missing files are ignored.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overlays MRVIZ_* variables on c using lookup, which is normally
// os.LookupEnv. Values that fail to parse are reported with ErrInvalidEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{EnvNumBins, &c.NumBins},
		{EnvMaxChannelSeries, &c.MaxChannelSeries},
		{EnvConcurrency, &c.Concurrency},
	}
	for _, e := range ints {
		v, ok := lookup(e.name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, e.name, v)
		}
		*e.dst = n
	}

	if v, ok := lookup(EnvChartFormat); ok && v != "" {
		c.ChartFormat = v
	}
	if v, ok := lookup(EnvTableFormat); ok && v != "" {
		c.TableFormat = v
	}
	if v, ok := lookup(EnvDBDir); ok && v != "" {
		c.DBDir = v
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{EnvVerbose, &c.Verbose},
		{EnvLogJSON, &c.LogJSON},
	}
	for _, e := range bools {
		v, ok := lookup(e.name)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, e.name, v)
		}
		*e.dst = b
	}
	return nil
}
