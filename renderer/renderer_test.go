package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/diagramkit/diagram"
	"github.com/kbukum/diagramkit/logger"
	"github.com/kbukum/diagramkit/process"
)

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   []string
	}{
		{
			name:   "svg defaults",
			params: Params{Format: diagram.FormatSVG, Theme: diagram.ThemeDefault, Width: 1200, Height: 800, Scale: 1},
			want:   []string{"-i", "in.mmd", "-o", "out.svg", "-w", "1200", "-H", "800"},
		},
		{
			name:   "png dark scaled",
			params: Params{Format: diagram.FormatPNG, Theme: diagram.ThemeDark, Width: 1920, Height: 1080, Scale: 2},
			want:   []string{"-i", "in.mmd", "-o", "out.svg", "-t", "dark", "-w", "1920", "-H", "1080", "-s", "2", "-b", "white"},
		},
		{
			name:   "fractional scale",
			params: Params{Format: diagram.FormatPDF, Theme: diagram.ThemeForest, Scale: 1.5},
			want:   []string{"-i", "in.mmd", "-o", "out.svg", "-t", "forest", "-s", "1.5"},
		},
		{
			name:   "validation size",
			params: Params{Format: diagram.FormatSVG, Width: 200, Height: 200},
			want:   []string{"-i", "in.mmd", "-o", "out.svg", "-w", "200", "-H", "200"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := Job{Input: "in.mmd", Output: "out.svg", Params: tt.params}
			assert.Equal(t, tt.want, BuildArgs(job))
			assert.Equal(t, BuildArgs(job), BuildArgs(job))
		})
	}
}

func TestBrowserPath(t *testing.T) {
	exists := func(set ...string) func(string) bool {
		return func(p string) bool {
			for _, s := range set {
				if s == p {
					return true
				}
			}
			return false
		}
	}

	assert.Equal(t, "/opt/chrome", browserPath("/opt/chrome", "linux", exists()))
	assert.Equal(t, "/usr/bin/chromium", browserPath("", "linux", exists("/usr/bin/chromium", "/usr/bin/google-chrome")))
	assert.Equal(t, `C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
		browserPath("", "windows", exists(`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`)))
	assert.Empty(t, browserPath("", "linux", exists()))
	assert.Empty(t, browserPath("", "plan9", exists("/usr/bin/chromium")))
}

func TestEngineError(t *testing.T) {
	cause := errors.New("process: exit code 1: exit status 1")

	ee := newEngineError(&process.Result{Stderr: []byte("  Parse error on line 2\nmore\n"), Stdout: []byte("ignored"), ExitCode: 1}, cause)
	assert.Equal(t, "Parse error on line 2\nmore", ee.Diagnostic)
	assert.Equal(t, 1, ee.ExitCode)
	assert.ErrorIs(t, ee, cause)

	ee = newEngineError(&process.Result{Stdout: []byte("from stdout"), ExitCode: 2}, cause)
	assert.Equal(t, "from stdout", ee.Diagnostic)

	ee = newEngineError(&process.Result{ExitCode: -1, TimedOut: true}, cause)
	assert.Equal(t, cause.Error(), ee.Diagnostic)
	assert.True(t, ee.TimedOut)

	ee = newEngineError(nil, cause)
	assert.Equal(t, -1, ee.ExitCode)
	assert.Contains(t, ee.Error(), "exit code -1")
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "mmdc", cfg.Binary)
	assert.Equal(t, 30000, cfg.TimeoutMS)
	assert.Equal(t, 15000, cfg.ValidateTimeoutMS)
	assert.Equal(t, 1<<20, cfg.MaxOutputBytes())
	assert.Equal(t, 4, cfg.MaxConcurrent)

	cfg.Engine = "wasm"
	assert.Error(t, cfg.Validate())
}

func TestNew(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	r, err := New(cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &CLI{}, r)

	cfg.Engine = EngineBrowser
	r, err = New(cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Browser{}, r)

	cfg.Engine = "other"
	_, err = New(cfg, logger.Nop())
	assert.Error(t, err)
}

func TestWithTheme(t *testing.T) {
	assert.Equal(t, "graph TD\nA-->B", WithTheme("graph TD\nA-->B", diagram.ThemeDefault))
	assert.Equal(t, "%%{init: {'theme': 'dark'}}%%\ngraph TD\nA-->B", WithTheme("graph TD\nA-->B", diagram.ThemeDark))
}
