// Package config loads h5complex settings from h5complex.yaml, the
// environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/robert-malhotra/go-hdf5/hdf5"
)

// EnvPrefix prefixes environment overrides, e.g. H5COMPLEX_ORDER=big.
const EnvPrefix = "H5COMPLEX"

// Keys bound to flags of the same name when present.
var Keys = []string{"order", "width", "format", "verbose"}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// Config represents the h5complex configuration
type Config struct {
	Order   string `mapstructure:"order"`
	Width   int    `mapstructure:"width"`
	Format  string `mapstructure:"format"`
	Verbose bool   `mapstructure:"verbose"`
}

// Load reads the configuration. An explicit path must exist; otherwise
// h5complex.yaml in the working directory is used if present. Changed flags
// override the environment, which overrides the file.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("order", "native")
	v.SetDefault("width", int(hdf5.Complex64))
	v.SetDefault("format", "text")
	v.SetDefault("verbose", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("h5complex")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range Keys {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %q: %w", key, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if !IsValidFormat(c.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats)
	}
	if _, err := c.ComplexWidth(); err != nil {
		return fmt.Errorf("invalid width: %w", err)
	}
	if _, err := c.ByteOrder(); err != nil {
		return fmt.Errorf("invalid order: %w", err)
	}
	return nil
}

// ByteOrder resolves the configured order, mapping "native" to the host order.
func (c *Config) ByteOrder() (hdf5.ByteOrder, error) {
	return hdf5.ParseByteOrder(c.Order)
}

// ComplexWidth returns the configured part width.
func (c *Config) ComplexWidth() (hdf5.Width, error) {
	return hdf5.ParseWidth(strconv.Itoa(c.Width))
}

// IsValidFormat checks if the format is one of the allowed values.
func IsValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
