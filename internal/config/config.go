// Package config binds command-line flags, an optional configuration file
// and GEOJSON_* environment variables into the pipelines' settings.
//
// Precedence, highest first: explicitly set flags, environment variables,
// the configuration file, flag defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. GEOJSON_BLOCK_SIZE.
const EnvPrefix = "GEOJSON"

// ErrOptionType is returned when an option's default has an unsupported type.
var ErrOptionType = errors.New("unsupported option type")

// Option describes one configuration key and the flag that sets it.
type Option struct {
	Name      string
	Shorthand string
	Usage     string
	// Default is a string, bool, int or float64 and fixes the
	// flag's type.
	Default interface{}
}

// Config wraps a viper instance.
type Config struct {
	v *viper.Viper
}

// New returns a configuration reading GEOJSON_* environment variables.
func New() *Config {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return &Config{v: v}
}

// Register defines a flag per option on set and binds it to its key. Flags
// that set already defines are only bound.
func (c *Config) Register(set *pflag.FlagSet, options ...Option) error {
	for _, o := range options {
		if f := set.Lookup(o.Name); f != nil {
			if err := c.v.BindPFlag(o.Name, f); err != nil {
				return fmt.Errorf("binding %s: %w", o.Name, err)
			}
			continue
		}
		switch d := o.Default.(type) {
		case string:
			set.StringP(o.Name, o.Shorthand, d, o.Usage)
		case bool:
			set.BoolP(o.Name, o.Shorthand, d, o.Usage)
		case int:
			set.IntP(o.Name, o.Shorthand, d, o.Usage)
		case float64:
			set.Float64P(o.Name, o.Shorthand, d, o.Usage)
		default:
			return fmt.Errorf("option %s (%T): %w", o.Name, o.Default, ErrOptionType)
		}
		if err := c.v.BindPFlag(o.Name, set.Lookup(o.Name)); err != nil {
			return fmt.Errorf("binding %s: %w", o.Name, err)
		}
	}
	return nil
}

// ReadFile loads the configuration file named by the "config" key, if any.
// The format follows the extension (toml, yaml, json, ...).
func (c *Config) ReadFile() error {
	path := c.v.GetString(KeyConfig)
	if path == "" {
		return nil
	}
	c.v.SetConfigFile(path)
	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading configuration file %s: %w", path, err)
	}
	return nil
}

// Set overrides a key.
func (c *Config) Set(key string, value interface{}) { c.v.Set(key, value) }

func (c *Config) String(key string) string { return c.v.GetString(key) }
func (c *Config) Bool(key string) bool { return c.v.GetBool(key) }
func (c *Config) Int(key string) int { return c.v.GetInt(key) }
func (c *Config) Float(key string) float64 { return c.v.GetFloat64(key) }
