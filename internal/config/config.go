// Package config provides Viper-based configuration loading for the sidecar tools.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SidecarConfig holds sidecar file settings.
type SidecarConfig struct {
	// Extension replaces the world file's extension to form the sidecar path.
	Extension string `mapstructure:"extension"`
	// Compressed selects the gzip envelope on read and write.
	Compressed bool `mapstructure:"compressed"`
}

// ColorsConfig locates the optional mod colour override table.
type ColorsConfig struct {
	// Path is a JSON or YAML override file; empty or missing means none.
	Path string `mapstructure:"path"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Sidecar SidecarConfig `mapstructure:"sidecar"`
	Colors  ColorsConfig  `mapstructure:"colors"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSidecar(c.Sidecar); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSidecar(s SidecarConfig) error {
	if s.Extension == "" {
		return errors.New("sidecar.extension must not be empty")
	}
	if !strings.HasPrefix(s.Extension, ".") || strings.ContainsAny(s.Extension, `/\`) {
		return fmt.Errorf("sidecar.extension must start with '.' and contain no path separators, got %q", s.Extension)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Precondition: path is empty or names a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with TWLD_ prefix
	v.SetEnvPrefix("TWLD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("sidecar.extension", ".twld")
	v.SetDefault("sidecar.compressed", true)

	v.SetDefault("colors.path", "")
}
