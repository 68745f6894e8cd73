package main

import (
	"fmt"

	"github.com/kbukum/diagramkit/config"
	"github.com/kbukum/diagramkit/diagram"
	"github.com/kbukum/diagramkit/observability"
	"github.com/kbukum/diagramkit/renderer"
	"github.com/kbukum/diagramkit/server"
	"github.com/kbukum/diagramkit/version"
	"github.com/kbukum/diagramkit/workspace"
)

const serviceName = "diagramd"

// AppConfig is the full diagramd configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config         `yaml:"server" mapstructure:"server"`
	Workspace     workspace.Config      `yaml:"workspace" mapstructure:"workspace"`
	Renderer      renderer.Config       `yaml:"renderer" mapstructure:"renderer"`
	Catalog       diagram.CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	Observability observability.Config  `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills unset fields of every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.GetVersionInfo().Version
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Workspace.ApplyDefaults()
	c.Renderer.ApplyDefaults()
	c.Catalog.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Workspace.Validate(); err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	if err := c.Renderer.Validate(); err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	return nil
}
