package renderer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/diagramkit/diagram"
	"github.com/kbukum/diagramkit/logger"
	"github.com/kbukum/diagramkit/process"
)

// Renderer converts a diagram source file into an artifact file.
type Renderer interface {
	Render(ctx context.Context, job Job) error
}

// Params are the engine parameters of one job.
type Params struct {
	Format diagram.Format
	Theme  diagram.Theme
	Width  int
	Height int
	Scale  float64
}

// Job is one engine invocation.
type Job struct {
	Input  string
	Output string
	Params Params
	// Timeout bounds the run. Zero uses the renderer's configured timeout.
	Timeout time.Duration
}

// EngineError is a failed engine run.
type EngineError struct {
	// Diagnostic is stderr, else stdout, else the run error text.
	Diagnostic string
	ExitCode   int
	TimedOut   bool
	// Canceled is set when the caller's context was canceled before the
	// deadline. It never coincides with TimedOut.
	Canceled   bool
	Cause      error
}

func (e *EngineError) Error() string {
	if e.TimedOut {
		return "renderer: timed out: " + e.Diagnostic
	}
	if e.Canceled {
		return "renderer: canceled: " + e.Diagnostic
	}
	return fmt.Sprintf("renderer: exit code %d: %s", e.ExitCode, e.Diagnostic)
}

func (e *EngineError) Unwrap() error { return e.Cause }

func newEngineError(res *process.Result, err error) *EngineError {
	ee := &EngineError{ExitCode: -1, Cause: err}
	if res != nil {
		ee.ExitCode = res.ExitCode
		ee.TimedOut = res.TimedOut
		ee.Canceled = res.Canceled
		ee.Diagnostic = strings.TrimSpace(string(res.Stderr))
		if ee.Diagnostic == "" {
			ee.Diagnostic = strings.TrimSpace(string(res.Stdout))
		}
	}
	if ee.Diagnostic == "" && err != nil {
		ee.Diagnostic = err.Error()
	}
	return ee
}

// New returns the engine named by cfg.Engine.
func New(cfg Config, log *logger.Logger) (Renderer, error) {
	switch cfg.Engine {
	case EngineCLI:
		return NewCLI(cfg, log), nil
	case EngineBrowser:
		return NewBrowser(cfg, log), nil
	default:
		return nil, fmt.Errorf("renderer: unknown engine %q", cfg.Engine)
	}
}
