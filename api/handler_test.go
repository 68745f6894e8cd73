package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/diagramkit/component"
	"github.com/kbukum/diagramkit/diagram"
	apperrors "github.com/kbukum/diagramkit/errors"
	"github.com/kbukum/diagramkit/export"
	"github.com/kbukum/diagramkit/logger"
	"github.com/kbukum/diagramkit/render"
	"github.com/kbukum/diagramkit/renderer"
	"github.com/kbukum/diagramkit/workspace"
)

const (
	minimal     = "flowchart TD\nA-->B"
	svgArtifact = `<svg xmlns="http://www.w3.org/2000/svg"></svg>`
)

type fakeEngine struct {
	calls int
	err   error
}

func (f *fakeEngine) Render(ctx context.Context, job renderer.Job) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(job.Output, []byte(svgArtifact), 0o644)
}

type testAPI struct {
	router *gin.Engine
	engine *fakeEngine
	ws     *workspace.Manager
	health []component.Health
}

func newTestAPI(t *testing.T, debug bool) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ws, err := workspace.New(workspace.Config{Dir: filepath.Join(t.TempDir(), "temp")}, logger.Nop())
	require.NoError(t, err)

	var cfg renderer.Config
	cfg.ApplyDefaults()
	catalog := diagram.DefaultCatalog()
	engine := &fakeEngine{}
	pipeline := render.NewPipeline(catalog, ws, engine, cfg, logger.Nop())

	ta := &testAPI{router: gin.New(), engine: engine, ws: ws}
	h := New(Deps{
		Renderer:  pipeline,
		Validator: render.NewValidator(ws, engine, cfg, logger.Nop()),
		Exporter:  export.NewService(catalog, pipeline, logger.Nop()),
		Health:    func(context.Context) []component.Health { return ta.health },
		Service:   "diagramd",
		Version:   "test",
		Debug:     debug,
	})
	h.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	h.Register(ta.router)
	return ta
}

func (ta *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code apperrors.ErrorCode) apperrors.ErrorBody {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	resp := decode[apperrors.ErrorResponse](t, w)
	require.Equal(t, code, resp.Error.Code)
	return resp.Error
}

func (ta *testAPI) requireClean(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(ta.ws.Root())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestValidate(t *testing.T) {
	ta := newTestAPI(t, false)

	w := ta.do(http.MethodPost, "/api/diagram/validate", gin.H{"code": minimal})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, render.ValidationResult{Valid: true}, decode[render.ValidationResult](t, w))

	w = ta.do(http.MethodPost, "/api/diagram/validate", gin.H{"code": "notadiagram\nfoo"})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[render.ValidationResult](t, w)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Error, "Invalid diagram type. Must start with:")
	assert.Equal(t, 1, ta.engine.calls)
	ta.requireClean(t)
}

func TestValidate_NoCode(t *testing.T) {
	ta := newTestAPI(t, false)

	for _, path := range []string{"/api/diagram/validate", "/api/diagram/render", "/api/export/download", "/api/export/batch", "/api/export/preview"} {
		w := ta.do(http.MethodPost, path, gin.H{})
		body := requireError(t, w, http.StatusBadRequest, apperrors.ErrCodeMissingField)
		assert.Equal(t, "No diagram code provided", body.Message, path)
	}
	assert.Zero(t, ta.engine.calls)
}

func TestMalformedBody(t *testing.T) {
	ta := newTestAPI(t, false)
	w := ta.do(http.MethodPost, "/api/diagram/render", `{"code": `)
	requireError(t, w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput)
}

func TestQuickValidate(t *testing.T) {
	ta := newTestAPI(t, false)

	w := ta.do(http.MethodPost, "/api/diagram/quick-validate", gin.H{"code": ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, render.ValidationResult{Valid: false, Error: "Empty diagram"}, decode[render.ValidationResult](t, w))

	w = ta.do(http.MethodPost, "/api/diagram/quick-validate", gin.H{"code": minimal})
	assert.Equal(t, render.ValidationResult{Valid: true}, decode[render.ValidationResult](t, w))
}

func TestRender(t *testing.T) {
	ta := newTestAPI(t, false)

	w := ta.do(http.MethodPost, "/api/diagram/render", gin.H{"code": minimal, "options": gin.H{"format": "svg", "theme": "default"}})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[render.RenderResult](t, w)
	assert.True(t, res.Success)
	assert.Equal(t, diagram.FormatSVG, res.Format)
	assert.Equal(t, "image/svg+xml", res.ContentType)
	data, err := res.Bytes()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<svg"))
	ta.requireClean(t)
}

func TestRender_Errors(t *testing.T) {
	ta := newTestAPI(t, false)

	w := ta.do(http.MethodPost, "/api/diagram/render", gin.H{"code": minimal, "options": gin.H{"format": "gif"}})
	body := requireError(t, w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput)
	assert.Equal(t, "Unsupported format: gif. Supported: svg, png, pdf", body.Message)

	w = ta.do(http.MethodPost, "/api/diagram/render", gin.H{"code": minimal, "options": gin.H{"width": 20000}})
	body = requireError(t, w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput)
	assert.Contains(t, body.Message, "width")
	assert.Zero(t, ta.engine.calls)

	ta.engine.err = &renderer.EngineError{Diagnostic: "Parse error on line 2", ExitCode: 1}
	w = ta.do(http.MethodPost, "/api/diagram/render", gin.H{"code": minimal})
	body = requireError(t, w, http.StatusUnprocessableEntity, apperrors.ErrCodeRenderFailed)
	assert.Equal(t, "Render failed: Syntax error on line 2", body.Message)
	assert.NotContains(t, body.Details, "cause")
	ta.requireClean(t)
}

func TestRender_DebugCause(t *testing.T) {
	ta := newTestAPI(t, true)
	ta.engine.err = &renderer.EngineError{Diagnostic: "Parse error on line 2", ExitCode: 1}

	w := ta.do(http.MethodPost, "/api/diagram/render", gin.H{"code": minimal})
	body := requireError(t, w, http.StatusUnprocessableEntity, apperrors.ErrCodeRenderFailed)
	assert.Contains(t, body.Details["cause"], "Parse error on line 2")
}

func TestTypesAndExamples(t *testing.T) {
	ta := newTestAPI(t, false)

	w := ta.do(http.MethodGet, "/api/diagram/types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	types := decode[map[string][]string](t, w)
	assert.Equal(t, diagram.SupportedTypes(), types["types"])

	w = ta.do(http.MethodGet, "/api/diagram/example/sequence", nil)
	ex := decode[map[string]string](t, w)
	assert.Equal(t, "sequence", ex["type"])
	assert.True(t, strings.HasPrefix(ex["example"], "sequenceDiagram"))

	w = ta.do(http.MethodGet, "/api/diagram/example", nil)
	ex = decode[map[string]string](t, w)
	assert.Equal(t, "flowchart", ex["type"])
	assert.Equal(t, diagram.Example("flowchart"), ex["example"])
}

func TestDownload(t *testing.T) {
	ta := newTestAPI(t, false)

	w := ta.do(http.MethodPost, "/api/export/download", gin.H{"code": minimal, "options": gin.H{"quality": "low", "filename": "chart"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename="chart-\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}\.png"$`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, svgArtifact, w.Body.String())

	var md export.Metadata
	require.NoError(t, json.Unmarshal([]byte(w.Header().Get("X-Export-Metadata")), &md))
	assert.Equal(t, "low", md.Quality)
	assert.Equal(t, "800x600", md.Dimensions)
	ta.requireClean(t)
}

func TestDownload_BadQuality(t *testing.T) {
	ta := newTestAPI(t, false)
	w := ta.do(http.MethodPost, "/api/export/download", gin.H{"code": minimal, "options": gin.H{"quality": "extreme"}})
	body := requireError(t, w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput)
	assert.Equal(t, "Export failed: Invalid quality preset: extreme. Available: low, medium, high, ultra", body.Message)
}

func TestPresets(t *testing.T) {
	ta := newTestAPI(t, false)
	w := ta.do(http.MethodGet, "/api/export/presets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[export.Catalogue](t, w)
	assert.Equal(t, []diagram.Format{"svg", "png", "pdf"}, p.Formats)
	require.Len(t, p.QualityPresets, 4)
	assert.Equal(t, "Small file size, good for web preview", p.QualityPresets[0].Description)
}

func TestEstimate(t *testing.T) {
	ta := newTestAPI(t, false)

	w := ta.do(http.MethodPost, "/api/export/estimate", gin.H{"format": "png", "quality": "ultra"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.Estimate{Estimated: 3000, Unit: "KB", Note: "Actual size may vary based on diagram complexity"}, decode[export.Estimate](t, w))

	w = ta.do(http.MethodPost, "/api/export/estimate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 800, decode[export.Estimate](t, w).Estimated)
}

func TestBatch(t *testing.T) {
	ta := newTestAPI(t, false)

	w := ta.do(http.MethodPost, "/api/export/batch", gin.H{
		"code":    minimal,
		"configs": []gin.H{{"format": "svg"}, {"format": "gif"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Results []export.BatchResult `json:"results"`
	}](t, w)
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)
	assert.Contains(t, resp.Results[1].Error, "Unsupported format: gif")
	assert.Equal(t, diagram.Format("gif"), resp.Results[1].Config.Format)

	w = ta.do(http.MethodPost, "/api/export/batch", gin.H{"code": minimal})
	body := requireError(t, w, http.StatusBadRequest, apperrors.ErrCodeMissingField)
	assert.Equal(t, "Export configurations required", body.Message)
	ta.requireClean(t)
}

func TestPreview(t *testing.T) {
	ta := newTestAPI(t, false)

	w := ta.do(http.MethodPost, "/api/export/preview", gin.H{"code": minimal, "options": gin.H{"format": "pdf"}})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]any](t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "image/svg+xml", resp["contentType"])
	assert.NotEmpty(t, resp["data"])
}

func TestHealth(t *testing.T) {
	ta := newTestAPI(t, false)
	ta.health = []component.Health{{Name: "http-server", Status: component.StatusHealthy}}

	w := ta.do(http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "OK", resp["status"])
	assert.Equal(t, "2024-01-02T03:04:05Z", resp["timestamp"])
	assert.Equal(t, "test", resp["version"])

	ta.health = append(ta.health, component.Health{Name: "workspace-sweeper", Status: component.StatusUnhealthy})
	w = ta.do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
