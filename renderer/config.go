package renderer

import (
	"fmt"
	"time"

	"github.com/kbukum/diagramkit/process"
	"github.com/kbukum/diagramkit/util"
)

// Engine names.
const (
	EngineCLI     = "cli"
	EngineBrowser = "browser"
)

// Config holds renderer configuration.
type Config struct {
	Engine            string   `yaml:"engine" mapstructure:"engine"`
	Binary            string   `yaml:"binary" mapstructure:"binary"`
	Args              []string `yaml:"args" mapstructure:"args"`
	TimeoutMS         int      `yaml:"timeout_ms" mapstructure:"timeout_ms"`
	ValidateTimeoutMS int      `yaml:"validate_timeout_ms" mapstructure:"validate_timeout_ms"`
	MaxOutput         string   `yaml:"max_output" mapstructure:"max_output"`
	// BrowserPath overrides browser discovery for both engines.
	BrowserPath   string        `yaml:"browser_path" mapstructure:"browser_path"`
	MaxConcurrent int           `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	QueueWait     time.Duration `yaml:"queue_wait" mapstructure:"queue_wait"`
	// GracePeriod is the SIGTERM to SIGKILL delay on timeout.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Engine == "" {
		c.Engine = EngineCLI
	}
	if c.Binary == "" {
		c.Binary = "mmdc"
	}
	if c.TimeoutMS == 0 {
		c.TimeoutMS = 30000
	}
	if c.ValidateTimeoutMS == 0 {
		c.ValidateTimeoutMS = 15000
	}
	if c.MaxOutput == "" {
		c.MaxOutput = "1MB"
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 4
	}
	if c.QueueWait == 0 {
		c.QueueWait = 10 * time.Second
	}
	if c.GracePeriod == 0 {
		c.GracePeriod = 2 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Engine != EngineCLI && c.Engine != EngineBrowser {
		return fmt.Errorf("renderer.engine must be %q or %q (got: %q)", EngineCLI, EngineBrowser, c.Engine)
	}
	if c.Engine == EngineCLI && c.Binary == "" {
		return fmt.Errorf("renderer.binary is required for the cli engine")
	}
	if c.TimeoutMS <= 0 || c.ValidateTimeoutMS <= 0 {
		return fmt.Errorf("renderer timeouts must be positive")
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("renderer.max_concurrent must be at least 1 (got: %d)", c.MaxConcurrent)
	}
	if c.QueueWait < 0 {
		return fmt.Errorf("renderer.queue_wait must be non-negative (got: %s)", c.QueueWait)
	}
	return nil
}

// Timeout returns the render timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// ValidateTimeout returns the validation timeout.
func (c *Config) ValidateTimeout() time.Duration {
	return time.Duration(c.ValidateTimeoutMS) * time.Millisecond
}

// MaxOutputBytes returns the per-stream output cap.
func (c *Config) MaxOutputBytes() int {
	return int(util.ParseSize(c.MaxOutput, process.DefaultMaxOutput))
}
