package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kbukum/diagramkit/api"
	"github.com/kbukum/diagramkit/bootstrap"
	"github.com/kbukum/diagramkit/diagram"
	"github.com/kbukum/diagramkit/logger"
	"github.com/kbukum/diagramkit/server"
	"github.com/kbukum/diagramkit/version"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the HTTP API",
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	svc, err := newServices(app.Cfg, app.Logger)
	if err != nil {
		app.Logger.Error("Startup failed", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	if err := registerCore(app, svc); err != nil {
		return err
	}
	if err := app.RegisterComponent(svc.sweeper); err != nil {
		return err
	}

	srv := server.New(app.Cfg.Server, app.Logger)
	srv.ApplyMiddleware(svc.metrics)
	api.New(api.Deps{
		Renderer:  svc.pipeline,
		Validator: svc.validator,
		Exporter:  svc.exporter,
		Health:    app.Components.HealthAll,
		Service:   app.Name,
		Version:   app.Version,
		Debug:     app.Cfg.Debug,
		Logger:    app.Logger,
	}).Register(srv.GinEngine())
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}
	app.OnReady(func(ctx context.Context) error {
		app.Logger.Info("Accepting requests", logger.Fields("addr", srv.Addr(), "engine", app.Cfg.Renderer.Engine, "workspace", svc.workspace.Root()))
		return nil
	})

	return app.Run(ctx)
}

// runTask builds a quiet app that logs to stderr and runs task with the
// render stack.
func runTask(ctx context.Context, cmd *cli.Command, task func(ctx context.Context, svc *services) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Logging.Output = "stderr"

	app, err := bootstrap.NewApp(cfg, bootstrap.WithQuiet())
	if err != nil {
		return err
	}
	svc, err := newServices(app.Cfg, app.Logger)
	if err != nil {
		return err
	}
	if err := registerCore(app, svc); err != nil {
		return err
	}
	return app.RunTask(ctx, func(ctx context.Context) error {
		return task(ctx, svc)
	})
}

func inputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:      "input",
		Aliases:   []string{"i"},
		Usage:     "diagram source file, - for stdin",
		Value:     "-",
		TakesFile: true,
	}
}

func readSource(path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "render a diagram to a file",
		Flags: []cli.Flag{
			inputFlag(),
			&cli.StringFlag{
				Name:      "output",
				Aliases:   []string{"o"},
				Usage:     "artifact path; defaults to the input name with the format extension",
				TakesFile: true,
			},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "svg, png or pdf"},
			&cli.StringFlag{Name: "theme", Aliases: []string{"t"}, Usage: "renderer theme"},
			&cli.IntFlag{Name: "width", Usage: "viewport width in pixels"},
			&cli.IntFlag{Name: "height", Usage: "viewport height in pixels"},
			&cli.FloatFlag{Name: "scale", Usage: "device scale factor"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runTask(ctx, cmd, func(ctx context.Context, svc *services) error {
				code, err := readSource(cmd.String("input"))
				if err != nil {
					return err
				}
				res, err := svc.pipeline.Render(ctx, code, diagram.Options{
					Format: diagram.Format(cmd.String("format")),
					Theme:  diagram.Theme(cmd.String("theme")),
					Width:  int(cmd.Int("width")),
					Height: int(cmd.Int("height")),
					Scale:  cmd.Float("scale"),
				})
				if err != nil {
					return err
				}
				data, err := res.Bytes()
				if err != nil {
					return err
				}
				out := outputPath(cmd.String("output"), cmd.String("input"), res.Format)
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintln(cmd.Root().Writer, out)
				return nil
			})
		},
	}
}

func outputPath(output, input string, format diagram.Format) string {
	if output != "" {
		return output
	}
	name := "diagram"
	if input != "-" {
		name = strings.TrimSuffix(input, filepath.Ext(input))
	}
	return name + "." + string(format)
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "check that a diagram renders",
		Flags: []cli.Flag{
			inputFlag(),
			&cli.BoolFlag{Name: "quick", Usage: "only check the diagram declaration"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runTask(ctx, cmd, func(ctx context.Context, svc *services) error {
				code, err := readSource(cmd.String("input"))
				if err != nil {
					return err
				}
				check := svc.validator.Validate
				if cmd.Bool("quick") {
					check = svc.validator.QuickValidate
				}
				res, err := check(ctx, code)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.Root().Writer)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
				if !res.Valid {
					return cli.Exit("", 2)
				}
				return nil
			})
		},
	}
}

func sweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "remove stale workspace files once",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runTask(ctx, cmd, func(ctx context.Context, svc *services) error {
				report, err := svc.sweeper.SweepNow(ctx)
				fmt.Fprintf(cmd.Root().Writer, "scanned=%d removed=%d failed=%d\n", report.Scanned, report.Removed, report.Failed)
				return err
			})
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print build information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Fprintln(cmd.Root().Writer, version.GetVersionInfo().String())
			return nil
		},
	}
}
