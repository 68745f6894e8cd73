package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/diagramkit/diagram"
	apperrors "github.com/kbukum/diagramkit/errors"
	"github.com/kbukum/diagramkit/renderer"
	"github.com/kbukum/diagramkit/resilience"
)

const minimal = "flowchart TD\nA-->B"

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) *apperrors.AppError {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}

func TestRender_SVG(t *testing.T) {
	fx := newFixture(t, nil)

	res, err := fx.pipeline.Render(context.Background(), minimal, diagram.Options{Format: diagram.FormatSVG, Theme: diagram.ThemeDefault})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, diagram.FormatSVG, res.Format)
	assert.Equal(t, "image/svg+xml", res.ContentType)

	data, err := res.Bytes()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<svg"))

	assert.Equal(t, 1, fx.fake.Calls())
	assert.Equal(t, renderer.Params{Format: diagram.FormatSVG, Theme: diagram.ThemeDefault, Width: 1200, Height: 800, Scale: 1}, fx.fake.LastJob().Params)
	assert.Equal(t, 30*time.Second, fx.fake.LastJob().Timeout)
	fx.requireClean(t)
}

func TestRender_AllFormatsAndThemes(t *testing.T) {
	fx := newFixture(t, nil)
	catalog := diagram.DefaultCatalog()

	for _, f := range catalog.Formats() {
		for _, th := range catalog.Themes() {
			res, err := fx.pipeline.Render(context.Background(), minimal, diagram.Options{Format: f, Theme: th})
			require.NoError(t, err, "%s/%s", f, th)
			assert.True(t, res.Success)
			assert.Equal(t, catalog.ContentType(f), res.ContentType)
			assert.Equal(t, th, fx.fake.LastJob().Params.Theme)
			assert.True(t, strings.HasSuffix(fx.fake.LastJob().Output, "."+string(f)))
		}
	}
	fx.requireClean(t)
}

func TestRender_InputErrorsTouchNothing(t *testing.T) {
	tests := []struct {
		name string
		code string
		opts diagram.Options
		want apperrors.ErrorCode
		msg  string
	}{
		{"empty code", "", diagram.Options{}, apperrors.ErrCodeMissingField, "Missing required field: code"},
		{"blank code", "  \n ", diagram.Options{}, apperrors.ErrCodeMissingField, "Missing required field: code"},
		{"format", minimal, diagram.Options{Format: "gif"}, apperrors.ErrCodeInvalidInput, "Unsupported format: gif. Supported: svg, png, pdf"},
		{"theme", minimal, diagram.Options{Theme: "sepia"}, apperrors.ErrCodeInvalidInput, "Unsupported theme: sepia. Supported: default, dark, forest, neutral"},
		{"negative scale", minimal, diagram.Options{Scale: -1}, apperrors.ErrCodeInvalidInput, "scale must be greater than 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, nil)
			_, err := fx.pipeline.Render(context.Background(), tt.code, tt.opts)
			appErr := requireCode(t, err, tt.want)
			assert.Equal(t, tt.msg, appErr.Message)
			assert.Equal(t, 400, appErr.HTTPStatus)
			assert.Zero(t, fx.ws.Allocations())
			assert.Zero(t, fx.fake.Calls())
		})
	}
}

func TestRender_EngineFailure(t *testing.T) {
	fx := newFixture(t, nil)
	fx.fake.err = &renderer.EngineError{Diagnostic: "Error: Parse error on line 2:\n...A-->\n---^", ExitCode: 1}

	_, err := fx.pipeline.Render(context.Background(), minimal, diagram.Options{})
	appErr := requireCode(t, err, apperrors.ErrCodeRenderFailed)
	assert.Equal(t, "Render failed: Syntax error on line 2", appErr.Message)
	assert.Equal(t, 422, appErr.HTTPStatus)
	fx.requireClean(t)
}

func TestRender_Timeout(t *testing.T) {
	fx := newFixture(t, shortTimeout)
	fx.fake.block = true

	_, err := fx.pipeline.Render(context.Background(), minimal, diagram.Options{})
	appErr := requireCode(t, err, apperrors.ErrCodeTimeout)
	assert.Equal(t, "Render failed: Rendering timed out", appErr.Message)
	assert.True(t, appErr.Retryable)
	fx.requireClean(t)
}

func TestRender_CallerCanceled(t *testing.T) {
	fx := newFixture(t, nil)
	fx.fake.block = true
	fx.fake.started = make(chan struct{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-fx.fake.started
		cancel()
	}()

	_, err := fx.pipeline.Render(ctx, minimal, diagram.Options{})
	appErr := requireCode(t, err, apperrors.ErrCodeCanceled)
	assert.Equal(t, apperrors.StatusClientClosedRequest, appErr.HTTPStatus)
	assert.False(t, appErr.Retryable)
	fx.requireClean(t)
}

func TestDiagnose(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		timedOut bool
		canceled bool
	}{
		{"engine deadline", &renderer.EngineError{Diagnostic: "x", TimedOut: true}, true, false},
		{"engine canceled", &renderer.EngineError{Diagnostic: "x", Canceled: true}, false, true},
		{"wrapped deadline", fmt.Errorf("run: %w", context.DeadlineExceeded), true, false},
		{"wrapped cancel", fmt.Errorf("run: %w", context.Canceled), false, true},
		{"plain failure", &renderer.EngineError{Diagnostic: "Parse error", ExitCode: 1}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := diagnose(tt.err)
			assert.Equal(t, tt.timedOut, d.timedOut)
			assert.Equal(t, tt.canceled, d.canceled)
		})
	}
}

func TestRender_MissingOutput(t *testing.T) {
	fx := newFixture(t, nil)
	fx.fake.noOutput = true

	_, err := fx.pipeline.Render(context.Background(), minimal, diagram.Options{})
	appErr := requireCode(t, err, apperrors.ErrCodeIO)
	assert.True(t, strings.HasPrefix(appErr.Message, "Failed to read output: "))
	fx.requireClean(t)
}

func TestRender_PreparationFailure(t *testing.T) {
	fx := newFixture(t, nil)
	require.NoError(t, os.RemoveAll(fx.ws.Root()))

	_, err := fx.pipeline.Render(context.Background(), minimal, diagram.Options{})
	appErr := requireCode(t, err, apperrors.ErrCodeIO)
	assert.True(t, strings.HasPrefix(appErr.Message, "Render preparation failed: "))
	assert.Zero(t, fx.fake.Calls())
}

func TestRender_PanicReleasesFiles(t *testing.T) {
	bulkhead := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "renderer", MaxConcurrent: 1})
	fx := newFixture(t, nil, WithBulkhead(bulkhead))
	fx.fake.panics = true

	assert.Panics(t, func() {
		_, _ = fx.pipeline.Render(context.Background(), minimal, diagram.Options{})
	})
	fx.requireClean(t)
	assert.Zero(t, bulkhead.InUse(), "slot must be returned")
}

func TestRender_Saturated(t *testing.T) {
	bulkhead := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "renderer", MaxConcurrent: 1})
	fx := newFixture(t, nil, WithBulkhead(bulkhead))
	fx.fake.gate = make(chan struct{})
	fx.fake.started = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := fx.pipeline.Render(context.Background(), minimal, diagram.Options{})
		done <- err
	}()
	<-fx.fake.started

	_, err := fx.pipeline.Render(context.Background(), minimal, diagram.Options{})
	appErr := requireCode(t, err, apperrors.ErrCodeServiceUnavailable)
	assert.Equal(t, 503, appErr.HTTPStatus)
	assert.True(t, errors.Is(err, resilience.ErrBulkheadFull))

	close(fx.fake.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, fx.fake.Calls())
	fx.requireClean(t)
}

func TestRender_CustomRules(t *testing.T) {
	fx := newFixture(t, nil, WithRules([]Rule{NewRule(`boom (\w+)`, "Engine exploded at $1")}))
	fx.fake.err = &renderer.EngineError{Diagnostic: "fatal: boom node7", ExitCode: 1}

	_, err := fx.pipeline.Render(context.Background(), minimal, diagram.Options{})
	appErr := requireCode(t, err, apperrors.ErrCodeRenderFailed)
	assert.Equal(t, "Render failed: Engine exploded at node7", appErr.Message)
}
