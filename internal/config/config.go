// Package config provides configuration types and defaults for libwatch.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LibraryConfig identifies one tracked library and its learning context.
type LibraryConfig struct {
	Name        string   `mapstructure:"name"`         // registry package name
	DisplayName string   `mapstructure:"display_name"` // optional human-readable name
	Category    string   `mapstructure:"category"`     // e.g. "ML Framework"
	Tags        []string `mapstructure:"tags"`         // skill-domain tags matched against the concept catalog
}

// RegistryConfig configures the package registry client.
type RegistryConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Workers  int           `mapstructure:"workers"`
}

// TracingConfig configures OpenTelemetry trace export.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Exporter string `mapstructure:"exporter"` // "stdout" or "otlp"
	Endpoint string `mapstructure:"endpoint"` // OTLP gRPC endpoint, e.g. "localhost:4317"
}

// Config holds all configuration options for libwatch.
// Configuration is read once per invocation; changes take effect on the
// next run.
type Config struct {
	StatePath   string `mapstructure:"state_path"`
	ArchivePath string `mapstructure:"archive_path"` // empty disables the SQLite event archive
	LogPath     string `mapstructure:"log_path"`
	CatalogPath string `mapstructure:"catalog_path"` // empty uses the embedded concept catalog
	SkillLevel  string `mapstructure:"skill_level"`

	// ZeroMajorMinorBreaking treats 0.x minor bumps as potentially breaking
	// (pre-1.0 semver convention). Disable if the registries you track
	// don't follow it.
	ZeroMajorMinorBreaking bool `mapstructure:"zero_major_minor_breaking"`

	Registry  RegistryConfig  `mapstructure:"registry"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Libraries []LibraryConfig `mapstructure:"libraries"`
}

// DefaultDataDir returns ~/.libwatch, falling back to a relative directory
// when the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".libwatch"
	}
	return filepath.Join(home, ".libwatch")
}

// DefaultLibraries returns the default tracking set.
func DefaultLibraries() []LibraryConfig {
	return []LibraryConfig{
		{Name: "torch", DisplayName: "PyTorch", Category: "ML Framework", Tags: []string{"ml", "production"}},
		{Name: "transformers", DisplayName: "Hugging Face Transformers", Category: "LLM/NLP", Tags: []string{"ml", "nlp"}},
		{Name: "fastapi", DisplayName: "FastAPI", Category: "API Framework", Tags: []string{"api", "web"}},
		{Name: "opencv-python", DisplayName: "OpenCV", Category: "Computer Vision", Tags: []string{"cv"}},
		{Name: "ray", DisplayName: "Ray", Category: "Distributed ML", Tags: []string{"ml", "distributed"}},
		{Name: "onnxruntime", DisplayName: "ONNX Runtime", Category: "Model Optimization", Tags: []string{"ml", "inference"}},
	}
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	dataDir := DefaultDataDir()
	return Config{
		StatePath:              filepath.Join(dataDir, "state.json"),
		ArchivePath:            filepath.Join(dataDir, "archive.db"),
		LogPath:                filepath.Join(dataDir, "libwatch.log"),
		SkillLevel:             "intermediate",
		ZeroMajorMinorBreaking: true,
		Registry: RegistryConfig{
			BaseURL:  "https://pypi.org/pypi",
			Timeout:  10 * time.Second,
			CacheTTL: 5 * time.Minute,
			Workers:  4,
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Exporter: "stdout",
		},
		Libraries: DefaultLibraries(),
	}
}

var validSkillLevels = map[string]bool{
	"beginner":     true,
	"intermediate": true,
	"advanced":     true,
}

// ValidateLibraries checks the tracked library set for errors.
func ValidateLibraries(libs []LibraryConfig) error {
	seen := make(map[string]bool, len(libs))
	for i, lib := range libs {
		if lib.Name == "" {
			return fmt.Errorf("library %d: name is required", i)
		}
		if seen[lib.Name] {
			return fmt.Errorf("library %d (%s): duplicate name", i, lib.Name)
		}
		seen[lib.Name] = true
	}
	return nil
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	if c.Registry.Timeout <= 0 {
		return fmt.Errorf("registry.timeout must be positive")
	}
	if c.Registry.Workers <= 0 {
		return fmt.Errorf("registry.workers must be positive")
	}
	if !validSkillLevels[c.SkillLevel] {
		return fmt.Errorf("skill_level %q is not one of beginner, intermediate, advanced", c.SkillLevel)
	}
	switch c.Tracing.Exporter {
	case "", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter %q is not one of stdout, otlp", c.Tracing.Exporter)
	}
	return ValidateLibraries(c.Libraries)
}

// Library returns the configured entry for a registry name.
func (c Config) Library(name string) (LibraryConfig, bool) {
	for _, lib := range c.Libraries {
		if lib.Name == name {
			return lib, true
		}
	}
	return LibraryConfig{}, false
}

// LibraryNames returns the tracked registry names in configuration order.
func (c Config) LibraryNames() []string {
	names := make([]string, len(c.Libraries))
	for i, lib := range c.Libraries {
		names[i] = lib.Name
	}
	return names
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# libwatch configuration

# Where durable state lives. The state file is the source of truth and is
# replaced atomically on every commit.
# state_path: ~/.libwatch/state.json

# SQLite archive of change events, used for time-window history queries.
# Set to "" to disable the archive (history falls back to the state file).
# archive_path: ~/.libwatch/archive.db

# Log file for diagnostic output (stdout is reserved for command output).
# log_path: ~/.libwatch/libwatch.log

# Concept catalog for learning opportunities. Empty uses the built-in catalog.
# catalog_path: ~/.libwatch/catalog.yaml

# Your skill level: beginner, intermediate, advanced.
# Opportunities above this level are withheld.
skill_level: intermediate

# Treat 0.x minor bumps as potentially breaking (pre-1.0 semver convention).
zero_major_minor_breaking: true

registry:
  base_url: https://pypi.org/pypi
  timeout: 10s
  cache_ttl: 5m
  workers: 4

# Trace check cycles with OpenTelemetry. Disabled by default.
tracing:
  enabled: false
  exporter: stdout   # stdout or otlp
  # endpoint: localhost:4317

# Libraries to track. Tags are matched against concept catalog tags to
# surface learning opportunities.
libraries:
  - name: torch
    display_name: PyTorch
    category: ML Framework
    tags: [ml, production]

  - name: transformers
    display_name: Hugging Face Transformers
    category: LLM/NLP
    tags: [ml, nlp]

  - name: fastapi
    display_name: FastAPI
    category: API Framework
    tags: [api, web]

  - name: opencv-python
    display_name: OpenCV
    category: Computer Vision
    tags: [cv]

  - name: ray
    display_name: Ray
    category: Distributed ML
    tags: [ml, distributed]

  - name: onnxruntime
    display_name: ONNX Runtime
    category: Model Optimization
    tags: [ml, inference]
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
