package config

import (
	"fmt"
	"os"

	"github.com/san-kum/springsim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMass      = 1.0
	DefaultStiffness = 0.1
	DefaultDamping   = 0.1
	DefaultDt        = 0.1
	DefaultDuration  = 50.0
	DefaultMaxSteps  = 1_000_000
	DefaultAddr      = ":8080"
	DefaultLogLevel  = "info"
)

type Config struct {
	Params   dynamo.Params `yaml:"params"`
	MaxSteps int           `yaml:"max_steps"`
	Plot     PlotConfig    `yaml:"plot"`
	Server   ServerConfig  `yaml:"server"`
	Log      LogConfig     `yaml:"log"`
}

type PlotConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	NoColor bool   `yaml:"no_color"`
}

func DefaultParams() dynamo.Params {
	return dynamo.Params{
		Mass:      DefaultMass,
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
		Dt:        DefaultDt,
		Duration:  DefaultDuration,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Params:   DefaultParams(),
		MaxSteps: DefaultMaxSteps,
		Plot: PlotConfig{
			Width:  80,
			Height: 12,
		},
		Server: ServerConfig{
			Addr:           DefaultAddr,
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load reads a YAML file on top of DefaultConfig, so omitted keys keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the parameters and the step budget.
func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	return CheckSteps(c.Params, c.MaxSteps)
}

// CheckSteps rejects runs longer than maxSteps samples. A non-positive
// budget disables the check.
func CheckSteps(p dynamo.Params, maxSteps int) error {
	if maxSteps > 0 && p.Steps() > maxSteps {
		return fmt.Errorf("%w: %d steps (duration %g / dt %g), limit %d",
			dynamo.ErrTooManySteps, p.Steps(), p.Duration, p.Dt, maxSteps)
	}
	return nil
}
