// Command diagramd renders Mermaid diagrams over HTTP or from the command
// line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  serviceName,
		Usage: "render Mermaid diagrams to SVG, PNG and PDF",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "config",
				Aliases:   []string{"c"},
				Usage:     "use the specified configuration file",
				TakesFile: true,
				Sources:   cli.NewValueSourceChain(cli.EnvVar("DIAGRAMD_CONFIG")),
			},
			&cli.StringFlag{
				Name:      "env-file",
				Usage:     "load environment variables from this file",
				TakesFile: true,
				Sources:   cli.NewValueSourceChain(cli.EnvVar("DIAGRAMD_ENV_FILE")),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logs",
				Sources: cli.NewValueSourceChain(cli.EnvVar("DIAGRAMD_DEBUG")),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			renderCommand(),
			validateCommand(),
			sweepCommand(),
			versionCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, serviceName+":", err)
		os.Exit(1)
	}
}
