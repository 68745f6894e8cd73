package workspace

import (
	"fmt"
	"time"
)

// Config holds workspace configuration.
type Config struct {
	Dir           string        `yaml:"dir" mapstructure:"dir"`
	Retention     time.Duration `yaml:"retention" mapstructure:"retention"`
	SweepInterval time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Dir == "" {
		c.Dir = "./temp"
	}
	if c.Retention == 0 {
		c.Retention = time.Hour
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = time.Hour
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("workspace.dir is required")
	}
	if c.Retention <= 0 {
		return fmt.Errorf("workspace.retention must be positive (got: %s)", c.Retention)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("workspace.sweep_interval must be positive (got: %s)", c.SweepInterval)
	}
	return nil
}
