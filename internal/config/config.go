// Package config loads translator CLI configuration from a sidecar file.
//
// Configuration can be specified in a JSON file named c89front.json or
// .c89frontrc, or in a YAML file named c89front.yaml. The sidecar is
// searched for starting at the input file's directory and walking upward
// through parent directories, so a project-root config applies to every
// source file beneath it.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds translator options that can be set from a sidecar file.
// All fields are optional and default to the translator's own defaults
// when unset.
type Config struct {
	// WarnAsError promotes every warning diagnostic to an error.
	WarnAsError *bool `json:"warnAsError,omitempty" yaml:"warnAsError,omitempty"`

	// Std names the dialect: "c89" or "c99". The value is loaded and kept
	// but not read by the translator, which accepts the same grammar (e.g.
	// // comments, mixed declarations and statements) for either value.
	Std string `json:"std,omitempty" yaml:"std,omitempty"`

	// IncludeDirs is a placeholder for a future preprocessor pass; the
	// translator itself does not read these paths, but accepts and threads
	// them through so a preprocessor can be slotted in later without an
	// incompatible config format change.
	IncludeDirs []string `json:"includeDirs,omitempty" yaml:"includeDirs,omitempty"`
}

// FileNames are the sidecar names searched for, in order of preference.
var FileNames = []string{
	"c89front.json",
	".c89frontrc",
	"c89front.yaml",
	"c89front.yml",
}

// Load searches for a config file starting from the given directory and
// walking up to parent directories. Returns nil, "", nil if none is found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path, dispatching on
// extension between the JSON and YAML sidecar formats.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if isYAMLPath(path) {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Options is the resolved set of translator options after merging a loaded
// Config with CLI flags, CLI taking precedence.
type Options struct {
	WarnAsError bool
	Std         string
	IncludeDirs []string
}

// DefaultOptions returns the translator's built-in defaults.
func DefaultOptions() Options {
	return Options{
		WarnAsError: false,
		Std:         "c99",
	}
}

// ToOptions converts a Config to Options, using defaults for unset fields.
func (c *Config) ToOptions() Options {
	opts := DefaultOptions()
	if c == nil {
		return opts
	}
	if c.WarnAsError != nil {
		opts.WarnAsError = *c.WarnAsError
	}
	if c.Std != "" {
		opts.Std = c.Std
	}
	if len(c.IncludeDirs) > 0 {
		opts.IncludeDirs = c.IncludeDirs
	}
	return opts
}

// CLIOverrides carries flags set directly on the command line; a nil
// pointer means "not specified on the CLI", so the config-file value (or
// built-in default) is left alone.
type CLIOverrides struct {
	WarnAsError *bool
	Std         string
	IncludeDirs []string
}

// Merge merges CLI options with config file options, CLI taking precedence.
func (c *Config) Merge(cli CLIOverrides) Options {
	opts := c.ToOptions()

	if cli.WarnAsError != nil {
		opts.WarnAsError = *cli.WarnAsError
	}
	if cli.Std != "" {
		opts.Std = cli.Std
	}
	if len(cli.IncludeDirs) > 0 {
		opts.IncludeDirs = append(opts.IncludeDirs, cli.IncludeDirs...)
	}

	return opts
}
