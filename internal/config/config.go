// Package config loads optional file-based defaults for the CLI flags.
//
// In CI the base directories and report paths are repository configuration
// rather than per-invocation arguments, so they can live in a committed
// .cppcheck-codequality.yaml instead of the pipeline script.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no --config
// path is given.
const DefaultFileName = ".cppcheck-codequality.yaml"

// Config holds the file-configurable settings. Every field has a matching
// CLI flag; an explicitly set flag wins over the file value.
type Config struct {
	InputFile  string   `yaml:"input_file"`
	OutputFile string   `yaml:"output_file"`
	BaseDirs   []string `yaml:"base_dirs"`
	LogLevel   string   `yaml:"loglevel"`
	LogFile    string   `yaml:"logfile"`
}

// Default returns the built-in defaults, matching the CLI flag defaults.
func Default() *Config {
	return &Config{
		InputFile:  "cppcheck.xml",
		OutputFile: "cppcheck.json",
		LogLevel:   "info",
	}
}

// Load reads configuration from the given path and merges it over the
// defaults. With an empty path, DefaultFileName is tried and its absence is
// not an error; an explicitly given path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return cfg, nil
}
