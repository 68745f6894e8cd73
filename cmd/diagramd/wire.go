package main

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/kbukum/diagramkit/bootstrap"
	"github.com/kbukum/diagramkit/component"
	"github.com/kbukum/diagramkit/config"
	"github.com/kbukum/diagramkit/diagram"
	"github.com/kbukum/diagramkit/export"
	"github.com/kbukum/diagramkit/logger"
	"github.com/kbukum/diagramkit/observability"
	"github.com/kbukum/diagramkit/render"
	"github.com/kbukum/diagramkit/renderer"
	"github.com/kbukum/diagramkit/resilience"
	"github.com/kbukum/diagramkit/workspace"
)

// services is the object graph shared by every command.
type services struct {
	catalog   *diagram.Catalog
	workspace *workspace.Manager
	engine    renderer.Renderer
	pipeline  *render.Pipeline
	validator *render.Validator
	exporter  *export.Service
	sweeper   *workspace.Sweeper
	metrics   *observability.Metrics
}

func loadConfig(cmd *cli.Command) (*AppConfig, error) {
	var opts []config.LoaderOption
	if p := cmd.String("config"); p != "" {
		opts = append(opts, config.WithConfigFile(p))
	}
	if p := cmd.String("env-file"); p != "" {
		opts = append(opts, config.WithEnvFile(p))
	}

	cfg := &AppConfig{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Bool("debug") {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func newApp(cmd *cli.Command, opts ...bootstrap.Option) (*bootstrap.App[*AppConfig], error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return bootstrap.NewApp(cfg, opts...)
}

// newServices builds the render stack. A workspace that cannot be created
// is fatal.
func newServices(cfg *AppConfig, log *logger.Logger) (*services, error) {
	catalog, err := diagram.NewCatalog(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	ws, err := workspace.New(cfg.Workspace, log)
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}
	engine, err := renderer.New(cfg.Renderer, log)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewGlobalMetrics()
	bulkhead := resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "renderer",
		MaxConcurrent: cfg.Renderer.MaxConcurrent,
		MaxWait:       cfg.Renderer.QueueWait,
	})
	opts := []render.Option{render.WithMetrics(metrics), render.WithBulkhead(bulkhead)}

	pipeline := render.NewPipeline(catalog, ws, engine, cfg.Renderer, log, opts...)
	return &services{
		catalog:   catalog,
		workspace: ws,
		engine:    engine,
		pipeline:  pipeline,
		validator: render.NewValidator(ws, engine, cfg.Renderer, log, opts...),
		exporter:  export.NewService(catalog, pipeline, log),
		sweeper:   workspace.NewSweeper(ws, cfg.Workspace, metrics),
		metrics:   metrics,
	}, nil
}

// registerCore registers telemetry first and the browser engine, when used,
// so that both outlive the components that depend on them.
func registerCore(app *bootstrap.App[*AppConfig], svc *services) error {
	cfg := app.Cfg
	obs := observability.NewComponent(cfg.Observability, cfg.Name, cfg.Version, cfg.Environment, app.Logger)
	if err := app.RegisterComponent(obs); err != nil {
		return err
	}
	if c, ok := svc.engine.(component.Component); ok {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}
	return nil
}
