package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/diagramkit/logger"
	"github.com/kbukum/diagramkit/observability"
	"github.com/kbukum/diagramkit/resilience"
	"github.com/kbukum/diagramkit/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/echo", func(c *gin.Context) {
		var body struct {
			Code string `json:"code"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusOK, body.Code)
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/api/health", func(c *gin.Context) { c.String(http.StatusOK, "healthy") })
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(middleware.Recovery(logger.NewWriter(&buf, "test")))

	w := do(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"INTERNAL_ERROR"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
	if !strings.Contains(buf.String(), "Panic recovered") {
		t.Errorf("expected panic to be logged, got %s", buf.String())
	}
}

func TestRequestID_Generated(t *testing.T) {
	var seen string
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) {
		seen = logger.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	got := w.Header().Get(middleware.HeaderRequestID)
	if got == "" || got != seen {
		t.Fatalf("header %q and context %q should match and be set", got, seen)
	}
}

func TestRequestID_PropagatesValidUUID(t *testing.T) {
	const id = "3f1c2a8e-5b7d-4e6f-9a0b-1c2d3e4f5a6b"
	r := newEngine(middleware.RequestID())

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(middleware.HeaderRequestID, id)
	w := do(r, req)
	if got := w.Header().Get(middleware.HeaderRequestID); got != id {
		t.Errorf("expected %s, got %s", id, got)
	}
}

func TestRequestID_ReplacesInvalid(t *testing.T) {
	r := newEngine(middleware.RequestID())

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(middleware.HeaderRequestID, "not a uuid\nwith newline")
	w := do(r, req)
	got := w.Header().Get(middleware.HeaderRequestID)
	if got == "" || strings.Contains(got, "not a uuid") {
		t.Errorf("expected a generated id, got %q", got)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriter(&buf, "test")
	r := newEngine(middleware.RequestID(), middleware.RequestLogger(log, observability.NopMetrics()))

	do(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	out := buf.String()
	for _, want := range []string{"Request completed", `"status":200`, `"request_id"`, `"path":"/ok"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s: %s", want, out)
		}
	}

	buf.Reset()
	do(r, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if buf.Len() != 0 {
		t.Errorf("health checks should not be logged, got %s", buf.String())
	}
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(middleware.BodySizeLimit("16B"))

	w := do(r, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"code":"graph TD; A-->B"}`)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}

	w = do(r, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"code":"ab"}`)))
	if w.Code != http.StatusOK || w.Body.String() != "ab" {
		t.Fatalf("expected small body to pass, got %d %s", w.Code, w.Body.String())
	}
}

func TestBodySizeLimit_UnknownLength(t *testing.T) {
	r := newEngine(middleware.BodySizeLimit("16B"))

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"code":"graph TD; A-->B"}`))
	req.ContentLength = -1
	w := do(r, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected binding to fail past the cap, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	limited := 0
	r := newEngine(middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: resilience.NewKeyedRateLimiter(resilience.RateLimiterConfig{Rate: 1, Burst: 2}),
		OnLimit: func(string) { limited++ },
	}))

	for i := 0; i < 2; i++ {
		if w := do(r, httptest.NewRequest(http.MethodGet, "/ok", nil)); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	w := do(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if !strings.Contains(w.Body.String(), `"code":"RATE_LIMITED"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
	if limited != 1 {
		t.Errorf("expected OnLimit once, got %d", limited)
	}

	if w := do(r, httptest.NewRequest(http.MethodGet, "/api/health", nil)); w.Code != http.StatusOK {
		t.Errorf("health must bypass the limiter, got %d", w.Code)
	}
}

func TestRateLimit_PerClient(t *testing.T) {
	r := newEngine(middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: resilience.NewKeyedRateLimiter(resilience.RateLimiterConfig{Rate: 1, Burst: 1}),
	}))

	a := httptest.NewRequest(http.MethodGet, "/ok", nil)
	a.RemoteAddr = "10.0.0.1:1234"
	b := httptest.NewRequest(http.MethodGet, "/ok", nil)
	b.RemoteAddr = "10.0.0.2:1234"

	if w := do(r, a); w.Code != http.StatusOK {
		t.Fatalf("client a: expected 200, got %d", w.Code)
	}
	if w := do(r, b); w.Code != http.StatusOK {
		t.Fatalf("client b has its own bucket, got %d", w.Code)
	}
}
