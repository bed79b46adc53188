// Package config holds the demo server configuration.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ServerConfig is the demo server's YAML configuration.
type ServerConfig struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// Demo controls the synthetic update feed.
	Demo DemoConfig `yaml:"demo"`

	// Watch controls the dev-mode file watcher.
	Watch WatchConfig `yaml:"watch"`
}

// DemoConfig controls the synthetic generation/deployment feed.
type DemoConfig struct {
	Enabled bool `yaml:"enabled"`

	// StepInterval is the pause between consecutive progress updates.
	StepInterval Duration `yaml:"step_interval"`

	// UserID, when set, scopes the feed's envelopes to one user.
	UserID string `yaml:"user_id"`
}

// WatchConfig controls the dev-mode file watcher.
type WatchConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Paths       []string `yaml:"paths"`
	Extensions  []string `yaml:"extensions"`
	IgnorePaths []string `yaml:"ignore_paths"`
}

func (c *ServerConfig) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8000"
	}
	if c.Demo.StepInterval <= 0 {
		c.Demo.StepInterval = Duration(2 * time.Second)
	}
	if c.Watch.Enabled && len(c.Watch.Paths) == 0 {
		c.Watch.Paths = []string{"."}
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *ServerConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.Demo.StepInterval.Std() < 10*time.Millisecond {
		return fmt.Errorf("demo.step_interval %v is too small", c.Demo.StepInterval.Std())
	}
	return nil
}
