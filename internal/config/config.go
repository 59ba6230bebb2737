// Package config defines the trailstats configuration and how it is loaded.
package config

import (
	"runtime"

	"github.com/planbiir/trailstats/internal/smooth"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// SmoothWindow and SmoothOrder shape the Savitzky-Golay filter.
	SmoothWindow int `koanf:"smooth_window"`
	SmoothOrder  int `koanf:"smooth_order"`

	// ShrinkWindow lets tracks shorter than SmoothWindow use a smaller
	// window instead of failing.
	ShrinkWindow bool `koanf:"shrink_window"`

	// VerticalEpsilon is the altitude step ignored by the vertical gain/loss.
	VerticalEpsilon float64 `koanf:"vertical_epsilon"`

	// VerticalStrategy is reset-each-sample or dead-band.
	VerticalStrategy string `koanf:"vertical_strategy"`

	// Clean runs the outlier filter before profiling.
	Clean bool `koanf:"clean"`

	// Workers bounds how many tracks are processed at once.
	Workers int `koanf:"workers"`

	// OutputDir receives the CSV and GeoJSON exports.
	OutputDir string `koanf:"output_dir"`

	// MetricsFile, when set, receives a Prometheus text dump after a run.
	MetricsFile string `koanf:"metrics_file"`

	// ActivityTypes maps activity-log types to the names kept in reports.
	// Types not listed are dropped.
	ActivityTypes map[string]string `koanf:"activity_types"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		SmoothWindow:     smooth.DefaultWindow,
		SmoothOrder:      smooth.DefaultOrder,
		ShrinkWindow:     true,
		VerticalEpsilon:  0,
		VerticalStrategy: smooth.ResetEachSample.String(),
		Workers:          runtime.NumCPU(),
		OutputDir:        "data",
		ActivityTypes: map[string]string{
			"Run":  "running",
			"Ride": "cycling",
			"Hike": "hiking",
		},
	}
}

// Strategy returns the parsed vertical strategy.
func (c *Config) Strategy() (smooth.Strategy, error) {
	return smooth.ParseStrategy(c.VerticalStrategy)
}
