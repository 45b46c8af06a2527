// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/ByLCY/wordsdisplay/layout"
)

// EnvLogLevel overrides [log].level when set.
const EnvLogLevel = "WORDSDISPLAY_LOG_LEVEL"

// Config is the root configuration structure.
type Config struct {
	// Style holds default style properties, using the same keys as the DSL style block.
	// Documents override them key by key.
	Style   map[string]any        `toml:"style"`
	Display layout.DisplayMetrics `toml:"display"`
	Log     LogConfig             `toml:"log"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LevelOrDefault returns the configured zerolog level, or info if unset or invalid.
func (l LogConfig) LevelOrDefault() zerolog.Level {
	if l.Level == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Style:   map[string]any{},
		Display: layout.DefaultMetrics(),
	}
}

// Load reads configuration from a TOML file and applies environment variable overrides.
// An empty path yields the defaults, still subject to overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
			errs = append(errs, fmt.Errorf("log.level=%q is invalid", c.Log.Level))
		}
	}
	if c.Display.DPI < 0 {
		errs = append(errs, fmt.Errorf("display.dpi=%v must not be negative", c.Display.DPI))
	}
	if c.Display.FontScale < 0 {
		errs = append(errs, fmt.Errorf("display.font_scale=%v must not be negative", c.Display.FontScale))
	}

	props, err := c.StyleProps()
	if err != nil {
		errs = append(errs, err)
	} else if _, err := layout.ResolveStyle(props, layout.UnitMM, c.Display); err != nil {
		errs = append(errs, fmt.Errorf("style: %w", err))
	}

	return errors.Join(errs...)
}

// StyleProps flattens [style] into the string form used by layout.ResolveStyle.
func (c *Config) StyleProps() (map[string]string, error) {
	out := make(map[string]string, len(c.Style))
	keys := make([]string, 0, len(c.Style))
	for k := range c.Style {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		switch v := c.Style[k].(type) {
		case string:
			out[k] = v
		case int64:
			out[k] = strconv.FormatInt(v, 10)
		case float64:
			out[k] = strconv.FormatFloat(v, 'g', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(v)
		default:
			errs = append(errs, fmt.Errorf("style.%s has unsupported type %T", k, v))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{EnvLogLevel, func(v string) {
			if v != "" {
				cfg.Log.Level = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}
