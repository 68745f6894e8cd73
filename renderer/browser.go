package renderer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	mermaid "github.com/dreampuf/mermaid.go"

	"github.com/kbukum/diagramkit/component"
	"github.com/kbukum/diagramkit/diagram"
	"github.com/kbukum/diagramkit/logger"
)

var (
	_ Renderer            = (*Browser)(nil)
	_ component.Component = (*Browser)(nil)
)

// mermaidEngine is the part of mermaid.RenderEngine the Browser drives.
type mermaidEngine interface {
	Render(content string) (string, error)
	RenderAsScaledPng(content string, scale float64) ([]byte, *mermaid.BoxModel, error)
	Cancel()
}

// launcher starts a browser and returns its engine and a release func.
type launcher func(browserPath string) (mermaidEngine, func(), error)

// Browser renders in a headless Chrome driven by mermaid.go. Chrome is
// launched on the first render and shared by later ones; renders are
// serialized on it. Width and height are decided by the diagram itself.
type Browser struct {
	lazy        *component.Lazy
	browserPath string
	timeout     time.Duration
	log         *logger.Logger
	launch      launcher

	// mu serializes renders and guards engine across launch and shutdown.
	mu      sync.Mutex
	engine  mermaidEngine
	release func()
}

// NewBrowser creates a Browser engine. cfg must have defaults applied.
func NewBrowser(cfg Config, log *logger.Logger) *Browser {
	if log == nil {
		log = logger.Nop()
	}
	b := &Browser{
		browserPath: BrowserPath(cfg.BrowserPath),
		timeout:     cfg.Timeout(),
		log:         log.WithComponent("renderer"),
		launch:      launchChrome,
	}
	b.lazy = component.NewLazy("renderer-browser", b.start).WithCloser(b.shutdown)
	return b
}

func launchChrome(browserPath string) (mermaidEngine, func(), error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	if browserPath != "" {
		opts = append(opts, chromedp.ExecPath(browserPath))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	engine, err := mermaid.NewRenderEngine(allocCtx)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return engine, cancel, nil
}

// start runs under b.mu through lazy.Initialize.
func (b *Browser) start(ctx context.Context) error {
	engine, release, err := b.launch(b.browserPath)
	if err != nil {
		return err
	}
	if engine == nil {
		if release != nil {
			release()
		}
		return fmt.Errorf("browser launcher returned no engine")
	}
	b.engine, b.release = engine, release
	b.log.Info("Headless browser started", logger.Fields("browser_path", b.browserPath))
	return nil
}

// shutdown runs under b.mu through lazy.Close. Cancel unblocks any render
// goroutine still running on the old engine.
func (b *Browser) shutdown() error {
	if b.engine != nil {
		b.engine.Cancel()
	}
	if b.release != nil {
		b.release()
	}
	b.engine, b.release = nil, nil
	return nil
}

type browserResult struct {
	data []byte
	err  error
}

// Render reads job.Input, renders it and writes job.Output. Only SVG and
// PNG are produced.
func (b *Browser) Render(ctx context.Context, job Job) error {
	format := job.Params.Format
	if format != diagram.FormatSVG && format != diagram.FormatPNG {
		return &EngineError{Diagnostic: fmt.Sprintf("browser engine cannot produce %s output", format), ExitCode: -1}
	}

	source, err := os.ReadFile(job.Input)
	if err != nil {
		return &EngineError{Diagnostic: err.Error(), ExitCode: -1, Cause: err}
	}

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = b.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	// The deadline may have passed while an earlier render held the lock.
	if err := ctx.Err(); err != nil {
		return contextError("waiting for the browser", err)
	}
	if err := b.lazy.Initialize(ctx); err != nil {
		return &EngineError{Diagnostic: err.Error(), ExitCode: -1, Cause: err}
	}
	engine := b.engine
	if engine == nil {
		// Initialized but shut down underneath us; start over next time.
		_ = b.lazy.Close()
		return &EngineError{Diagnostic: "browser is not running", ExitCode: -1}
	}

	content := WithTheme(string(source), job.Params.Theme)
	done := make(chan browserResult, 1)
	go func() {
		if format == diagram.FormatSVG {
			svg, err := engine.Render(content)
			done <- browserResult{data: []byte(svg), err: err}
			return
		}
		scale := job.Params.Scale
		if scale <= 0 {
			scale = 1
		}
		png, _, err := engine.RenderAsScaledPng(content, scale)
		done <- browserResult{data: png, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return &EngineError{Diagnostic: res.err.Error(), ExitCode: 1, Cause: res.err}
		}
		if err := os.WriteFile(job.Output, res.data, 0o644); err != nil {
			return &EngineError{Diagnostic: err.Error(), ExitCode: -1, Cause: err}
		}
		return nil
	case <-ctx.Done():
		// The tab is stuck; drop the browser so the next render starts fresh.
		_ = b.lazy.Close()
		return contextError("rendering", ctx.Err())
	}
}

func contextError(stage string, err error) *EngineError {
	ee := &EngineError{ExitCode: -1, Cause: err}
	if errors.Is(err, context.DeadlineExceeded) {
		ee.TimedOut = true
		ee.Diagnostic = stage + " timed out"
	} else {
		ee.Canceled = true
		ee.Diagnostic = stage + " canceled"
	}
	return ee
}

// WithTheme prefixes source with a Mermaid init directive selecting theme.
// The default theme leaves source untouched.
func WithTheme(source string, theme diagram.Theme) string {
	if theme == "" || theme == diagram.ThemeDefault {
		return source
	}
	return fmt.Sprintf("%%%%{init: {'theme': '%s'}}%%%%\n%s", theme, source)
}

// Name returns the component name.
func (b *Browser) Name() string { return b.lazy.Name() }

// Start is a no-op; Chrome starts on first use.
func (b *Browser) Start(ctx context.Context) error { return nil }

// Stop closes Chrome if it was started.
func (b *Browser) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lazy.Close()
}

// Health reports whether Chrome is running.
func (b *Browser) Health(ctx context.Context) component.Health {
	msg := "idle"
	if b.lazy.IsInitialized() {
		msg = "running"
	}
	return component.Health{Name: b.Name(), Status: component.StatusHealthy, Message: msg}
}

// Describe returns summary info for the startup display.
func (b *Browser) Describe() component.Description {
	path := b.browserPath
	if path == "" {
		path = "chromedp default"
	}
	return component.Description{Name: "Renderer", Type: EngineBrowser, Details: path + " timeout=" + b.timeout.String()}
}
