// Package config handles drctool configuration loading and management.
package config

import (
	"runtime"

	"github.com/Faultbox/drcgeom/internal/drcio"
)

// Config holds all tool settings.
type Config struct {
	Encoder drcio.Options `yaml:"encoder" toml:"encoder"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
	Data    DataConfig    `yaml:"data" toml:"data"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// OutputConfig holds file writing settings.
type OutputConfig struct {
	Atomic bool `yaml:"atomic" toml:"atomic"` // write through a temp file and rename
	Jobs   int  `yaml:"jobs" toml:"jobs"`     // parallel conversions in batch mode
}

// DataConfig holds input lookup settings.
type DataConfig struct {
	SearchPaths []string `yaml:"search_paths" toml:"search_paths"` // Tried for relative .drc paths
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Encoder: drcio.DefaultOptions(),
		Output: OutputConfig{
			Atomic: true,
			Jobs:   runtime.NumCPU(),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// NewWriter returns a writer configured from c.
func (c *Config) NewWriter() *drcio.Writer {
	w := drcio.NewWriter(c.Encoder)
	w.Atomic = c.Output.Atomic
	return w
}

// NewReader returns a reader configured from c.
func (c *Config) NewReader() *drcio.Reader {
	return drcio.NewReader(c.Data.SearchPaths...)
}
