package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Load reads configuration from the given path, or from
// ~/.libwatch/config.yaml when path is empty. A missing config file is not
// an error; defaults apply. Environment variables prefixed LIBWATCH_
// override file values (e.g. LIBWATCH_SKILL_LEVEL).
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("LIBWATCH")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(DefaultDataDir())
	}

	setDefaults(v)

	// A missing file (either the default location or an explicitly named
	// path) means defaults apply; anything else is fatal.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("state_path", d.StatePath)
	v.SetDefault("archive_path", d.ArchivePath)
	v.SetDefault("log_path", d.LogPath)
	v.SetDefault("catalog_path", d.CatalogPath)
	v.SetDefault("skill_level", d.SkillLevel)
	v.SetDefault("zero_major_minor_breaking", d.ZeroMajorMinorBreaking)
	v.SetDefault("registry.base_url", d.Registry.BaseURL)
	v.SetDefault("registry.timeout", d.Registry.Timeout)
	v.SetDefault("registry.cache_ttl", d.Registry.CacheTTL)
	v.SetDefault("registry.workers", d.Registry.Workers)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
}
