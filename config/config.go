// Package config loads hostbridge settings from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/hostbridge/env"
	"github.com/wippyai/hostbridge/errors"
)

var validate = validator.New()

// Config is the root configuration.
type Config struct {
	Memory Memory `yaml:"memory"`
	Limits Limits `yaml:"limits"`
	Log    Log    `yaml:"log"`
}

// Memory sizes the host heap's linear memory in 64 KiB pages.
type Memory struct {
	InitialPages uint32 `yaml:"initial_pages" validate:"min=1,max=65536"`
	MaxPages     uint32 `yaml:"max_pages" validate:"min=1,max=65536,gtefield=InitialPages"`
}

// Limits bounds converted values. Zero disables a limit.
type Limits struct {
	MaxStringLength int `yaml:"max_string_length" validate:"min=0"`
	MaxBufferSize   int `yaml:"max_buffer_size" validate:"min=0"`
	MaxArrayLength  int `yaml:"max_array_length" validate:"min=0"`
	MaxDepth        int `yaml:"max_depth" validate:"min=0,max=1024"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	l := env.DefaultLimits()
	return &Config{
		Memory: Memory{InitialPages: 1, MaxPages: 1024},
		Limits: Limits{
			MaxStringLength: l.MaxStringLength,
			MaxBufferSize:   l.MaxBufferSize,
			MaxArrayLength:  l.MaxArrayLength,
			MaxDepth:        l.MaxDepth,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads and validates a YAML file. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "decode yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "validate config")
	}
	return nil
}

// EnvLimits returns the conversion limits for the Env manager.
func (c *Config) EnvLimits() env.Limits {
	return env.Limits{
		MaxStringLength: c.Limits.MaxStringLength,
		MaxBufferSize:   c.Limits.MaxBufferSize,
		MaxArrayLength:  c.Limits.MaxArrayLength,
		MaxDepth:        c.Limits.MaxDepth,
	}
}

// Logger builds a zap logger for the configured level.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse log level")
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
