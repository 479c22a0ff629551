// Package config loads rsinspect settings from .rsinspect.yaml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/rsinspect/internal/inspect"
	"github.com/phobologic/rsinspect/internal/model"
)

// FileName is the base name of the config file looked up in the analysed root.
const FileName = ".rsinspect"

// EnvPrefix prefixes environment overrides (RSINSPECT_FORMAT, ...).
const EnvPrefix = "RSINSPECT"

// Formats lists the supported output formats.
var Formats = []string{"toon", "sarif", "yaml", "text"}

// FailOn values.
const (
	FailOnError   = "error"
	FailOnWarning = "warning"
	FailOnNone    = "none"
)

// Config is the complete rsinspect configuration.
type Config struct {
	// Levels maps lint or lint-group names to allow, warn, deny or forbid.
	Levels map[string]string `mapstructure:"levels" yaml:"levels,omitempty"`
	// Disabled lists inspection ids that never run.
	Disabled    []string `mapstructure:"disabled" yaml:"disabled,omitempty"`
	Exclude     []string `mapstructure:"exclude" yaml:"exclude,omitempty"`
	MaxFileSize int64    `mapstructure:"max_file_size" yaml:"max_file_size"`
	MaxFiles    int      `mapstructure:"max_files" yaml:"max_files"`
	// Workers bounds parsing concurrency; 0 means one per CPU.
	Workers int    `mapstructure:"workers" yaml:"workers"`
	Format  string `mapstructure:"format" yaml:"format"`
	FailOn  string `mapstructure:"fail_on" yaml:"fail_on"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Levels:      map[string]string{},
		MaxFileSize: 1 << 20,
		Format:      "toon",
		FailOn:      FailOnError,
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("levels", d.Levels)
	v.SetDefault("disabled", d.Disabled)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("max_file_size", d.MaxFileSize)
	v.SetDefault("max_files", d.MaxFiles)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("format", d.Format)
	v.SetDefault("fail_on", d.FailOn)
}

// Load reads configuration for root. When path is non-empty that file must
// exist; otherwise .rsinspect.{yaml,yml,toml,json} in root is used if
// present and defaults apply when it is not. Environment variables with the
// RSINSPECT_ prefix override file values.
func Load(root, path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(root)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Levels == nil {
		cfg.Levels = map[string]string{}
	}
	return &cfg, nil
}

// Path returns the default config file location for root.
func Path(root string) string {
	return filepath.Join(root, FileName+".yaml")
}

// Validate checks field values.
func (c *Config) Validate() error {
	for _, lint := range sortedKeys(c.Levels) {
		if _, ok := inspect.ParseLevel(c.Levels[lint]); !ok {
			return &Error{Field: "levels." + lint, Message: fmt.Sprintf("unknown level %q", c.Levels[lint])}
		}
	}
	for _, id := range c.Disabled {
		if !inspect.Known(id) {
			return &Error{Field: "disabled", Message: fmt.Sprintf("unknown inspection %q", id)}
		}
	}
	for _, p := range c.Exclude {
		if !doublestar.ValidatePattern(p) {
			return &Error{Field: "exclude", Message: fmt.Sprintf("invalid pattern %q", p)}
		}
	}
	if c.MaxFileSize < 0 {
		return &Error{Field: "max_file_size", Message: "must not be negative"}
	}
	if c.MaxFiles < 0 {
		return &Error{Field: "max_files", Message: "must not be negative"}
	}
	if c.Workers < 0 {
		return &Error{Field: "workers", Message: "must not be negative"}
	}
	if !validFormat(c.Format) {
		return &Error{Field: "format", Message: fmt.Sprintf("unsupported format %q (want %s)", c.Format, strings.Join(Formats, ", "))}
	}
	switch c.FailOn {
	case FailOnError, FailOnWarning, FailOnNone:
	default:
		return &Error{Field: "fail_on", Message: fmt.Sprintf("unsupported value %q", c.FailOn)}
	}
	return nil
}

// LintLevels converts Levels for the inspector. Call Validate first.
func (c *Config) LintLevels() map[string]model.Level {
	out := make(map[string]model.Level, len(c.Levels))
	for lint, l := range c.Levels {
		if level, ok := inspect.ParseLevel(l); ok {
			out[lint] = level
		}
	}
	return out
}

// DisabledSet returns Disabled as a lookup set.
func (c *Config) DisabledSet() map[string]bool {
	out := make(map[string]bool, len(c.Disabled))
	for _, id := range c.Disabled {
		out[id] = true
	}
	return out
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return string(data), nil
}

func validFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Error represents an invalid configuration value.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
