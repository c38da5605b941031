// Package config loads the host configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandline/sandline/internal/serialport"
)

// RunConfig tunes how a pattern is interpolated and streamed.
type RunConfig struct {
	StepSize        float64 `yaml:"step_size"`       // theta-rho distance between interpolated points
	BatchSize       int     `yaml:"batch_size"`      // points per wire message
	AwaitTimeoutSec int     `yaml:"await_timeout_s"` // bound on one READY/DONE wait
}

// Config aggregates all host configuration.
type Config struct {
	Serial serialport.Options `yaml:"serial"`
	Port   string             `yaml:"port"` // serial device path, e.g. /dev/ttyUSB0
	Run    RunConfig          `yaml:"run"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.normalize() // cannot fail on zero values
	return cfg
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	serial, err := c.Serial.Normalize()
	if err != nil {
		return err
	}
	c.Serial = serial

	if c.Run.StepSize < 0 {
		return fmt.Errorf("run.step_size must be positive, got %v", c.Run.StepSize)
	}
	if c.Run.StepSize == 0 {
		c.Run.StepSize = 0.005
	}

	if c.Run.BatchSize < 0 {
		return fmt.Errorf("run.batch_size must be positive, got %d", c.Run.BatchSize)
	}
	if c.Run.BatchSize == 0 {
		c.Run.BatchSize = 20
	}

	if c.Run.AwaitTimeoutSec < 0 {
		return fmt.Errorf("run.await_timeout_s must be positive, got %d", c.Run.AwaitTimeoutSec)
	}
	if c.Run.AwaitTimeoutSec == 0 {
		c.Run.AwaitTimeoutSec = 120
	}

	return nil
}

// AwaitTimeout returns the handshake timeout as a duration.
func (c *Config) AwaitTimeout() time.Duration {
	return time.Duration(c.Run.AwaitTimeoutSec) * time.Second
}
