// Package config is used to load the configuration file
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	DefaultGDB      = "gdb"
	DefaultMaxStops = 128
	MaxMaxStops     = 4096
)

type trace struct {
	GDB      string `mapstructure:"gdb"`
	MaxStops int    `mapstructure:"max-stops"`
}

// Config is the configuration struct
type Config struct {
	Verbose   bool  `mapstructure:"verbose"`
	Color     bool  `mapstructure:"color"`
	Debug     bool  `mapstructure:"debug"`
	DumpState bool  `mapstructure:"dump-state"`
	Trace     trace `mapstructure:"trace"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("trace.gdb", DefaultGDB)
	v.SetDefault("trace.max-stops", DefaultMaxStops)
}

func (c *Config) verify() error {
	if c.Trace.GDB == "" {
		c.Trace.GDB = DefaultGDB
	}
	if c.Trace.MaxStops == 0 {
		c.Trace.MaxStops = DefaultMaxStops
	}
	if c.Trace.MaxStops < 1 || c.Trace.MaxStops > MaxMaxStops {
		return fmt.Errorf("trace.max-stops must be between 1 and %d (got %d)", MaxMaxStops, c.Trace.MaxStops)
	}
	return nil
}

// Load unmarshals and verifies the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	var c Config

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %v", err)
	}

	if err := c.verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %v", err)
	}

	return &c, nil
}

// LoadConfig loads the configuration from the global viper instance
func LoadConfig() (*Config, error) {
	return Load(viper.GetViper())
}
