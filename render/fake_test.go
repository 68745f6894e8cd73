package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kbukum/diagramkit/diagram"
	"github.com/kbukum/diagramkit/logger"
	"github.com/kbukum/diagramkit/renderer"
	"github.com/kbukum/diagramkit/workspace"
)

const svgArtifact = `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200"></svg>`

// fakeRenderer writes canned output, counts invocations and can fail,
// block until its deadline, wait on a gate or panic.
type fakeRenderer struct {
	mu       sync.Mutex
	calls    int
	jobs     []renderer.Job
	output   []byte
	err      error
	block    bool
	noOutput bool
	panics   bool
	gate     chan struct{}
	started  chan struct{}
}

func newFake() *fakeRenderer {
	return &fakeRenderer{output: []byte(svgArtifact)}
}

func (f *fakeRenderer) Render(ctx context.Context, job renderer.Job) error {
	f.mu.Lock()
	f.calls++
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.block {
		ctx, cancel := context.WithTimeout(ctx, job.Timeout)
		defer cancel()
		<-ctx.Done()
		timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)
		return &renderer.EngineError{
			Diagnostic: "process: killed by context: " + ctx.Err().Error(),
			ExitCode:   -1,
			TimedOut:   timedOut,
			Canceled:   !timedOut,
			Cause:      ctx.Err(),
		}
	}
	if f.err != nil {
		return f.err
	}
	if f.noOutput {
		return nil
	}
	if err := os.WriteFile(job.Output, f.output, 0o644); err != nil {
		return err
	}
	if f.panics {
		panic("renderer crashed")
	}
	return nil
}

func (f *fakeRenderer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRenderer) LastJob() renderer.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[len(f.jobs)-1]
}

type fixture struct {
	ws        *workspace.Manager
	fake      *fakeRenderer
	pipeline  *Pipeline
	validator *Validator
}

func newFixture(t *testing.T, mutate func(*renderer.Config), opts ...Option) *fixture {
	t.Helper()
	ws, err := workspace.New(workspace.Config{Dir: filepath.Join(t.TempDir(), "temp")}, logger.Nop())
	require.NoError(t, err)

	cfg := renderer.Config{}
	if mutate != nil {
		mutate(&cfg)
	}
	cfg.ApplyDefaults()

	fake := newFake()
	return &fixture{
		ws:        ws,
		fake:      fake,
		pipeline:  NewPipeline(diagram.DefaultCatalog(), ws, fake, cfg, logger.Nop(), opts...),
		validator: NewValidator(ws, fake, cfg, logger.Nop(), opts...),
	}
}

// requireClean asserts that no transient file survived the call.
func (fx *fixture) requireClean(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(fx.ws.Root())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Empty(t, names, "workspace must be empty")
}

func shortTimeout(cfg *renderer.Config) {
	cfg.TimeoutMS = 50
	cfg.ValidateTimeoutMS = 50
}

