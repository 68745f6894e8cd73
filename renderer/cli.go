package renderer

import (
	"context"
	"time"

	"github.com/kbukum/diagramkit/component"
	"github.com/kbukum/diagramkit/logger"
	"github.com/kbukum/diagramkit/process"
)

var _ Renderer = (*CLI)(nil)

// CLI runs the Mermaid CLI as a subprocess.
type CLI struct {
	binary      string
	prefix      []string
	env         []string
	timeout     time.Duration
	maxOutput   int
	gracePeriod time.Duration
	log         *logger.Logger
}

// NewCLI creates a CLI engine. cfg must have defaults applied.
func NewCLI(cfg Config, log *logger.Logger) *CLI {
	if log == nil {
		log = logger.Nop()
	}
	c := &CLI{
		binary:      cfg.Binary,
		prefix:      append([]string(nil), cfg.Args...),
		timeout:     cfg.Timeout(),
		maxOutput:   cfg.MaxOutputBytes(),
		gracePeriod: cfg.GracePeriod,
		log:         log.WithComponent("renderer"),
	}
	if path := BrowserPath(cfg.BrowserPath); path != "" {
		c.env = []string{"PUPPETEER_EXECUTABLE_PATH=" + path}
	}
	return c
}

// Render runs `<binary> [args...] -i <in> -o <out> ...` under the job timeout.
func (c *CLI) Render(ctx context.Context, job Job) error {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string(nil), c.prefix...), BuildArgs(job)...)
	res, err := process.Run(ctx, process.Command{
		Binary:      c.binary,
		Args:        args,
		Env:         c.env,
		GracePeriod: c.gracePeriod,
		MaxOutput:   c.maxOutput,
	})
	if err != nil {
		ee := newEngineError(res, err)
		c.log.WithContext(ctx).Debug("Renderer exited with failure", logger.Fields(
			logger.FieldExitCode, ee.ExitCode,
			"timed_out", ee.TimedOut,
			"canceled", ee.Canceled,
			logger.FieldError, ee.Diagnostic,
		))
		return ee
	}
	if res.Truncated {
		c.log.WithContext(ctx).Debug("Renderer output truncated", logger.Fields("max_output", c.maxOutput))
	}
	return nil
}

// Describe returns summary info for the startup display.
func (c *CLI) Describe() component.Description {
	return component.Description{Name: "Renderer", Type: EngineCLI, Details: c.binary + " timeout=" + c.timeout.String()}
}
