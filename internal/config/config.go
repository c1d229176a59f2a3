// Package config loads wsidx's configuration with env > file > defaults
// precedence: defaults are applied first, an optional YAML file overrides
// them, and environment variables take final precedence over both.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wsidx/wsidx/internal/layout"
)

// Config holds the settings a sync invocation needs beyond the tag itself.
type Config struct {
	// IndexRoot is the root directory under which all tag and provider
	// state lives. Defaults to "<home>/.continue".
	IndexRoot string `yaml:"index_root"`

	// DefaultProvider is used when a caller does not name one explicitly.
	DefaultProvider string `yaml:"default_provider"`

	// ExtraIgnoreGlobs are appended to the seeded global ignore list as an
	// always-active, lowest-priority layer (see internal/ignore).
	ExtraIgnoreGlobs []string `yaml:"extra_ignore_globs"`

	Log LogConfig `yaml:"log"`
}

// LogConfig mirrors the CLI's own logging flags, so a config file can set
// defaults that flags then override.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in defaults, used when no file or env
// overrides apply.
func Default() (*Config, error) {
	root, err := layout.DefaultRoot()
	if err != nil {
		return nil, err
	}
	return &Config{
		IndexRoot:       root,
		DefaultProvider: "default",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}, nil
}

// Env names consulted after defaults and file, in ascending precedence.
const (
	envIndexRoot       = "WSIDX_INDEX_ROOT"
	envDefaultProvider = "WSIDX_PROVIDER"
	envExtraIgnore     = "WSIDX_EXTRA_IGNORE"
	envLogLevel        = "WSIDX_LOG_LEVEL"
	envLogFormat       = "WSIDX_LOG_FORMAT"
)

// Load builds a Config starting from defaults, layering in path (a YAML
// file, skipped silently if it does not exist), then environment
// variables.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		if err := mergeFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(envIndexRoot); v != "" {
		cfg.IndexRoot = v
	}
	if v := os.Getenv(envDefaultProvider); v != "" {
		cfg.DefaultProvider = v
	}
	if v := os.Getenv(envExtraIgnore); v != "" {
		cfg.ExtraIgnoreGlobs = strings.Split(v, ",")
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(envLogFormat); v != "" {
		cfg.Log.Format = v
	}
}
