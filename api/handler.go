package api

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/diagramkit/component"
	"github.com/kbukum/diagramkit/diagram"
	apperrors "github.com/kbukum/diagramkit/errors"
	"github.com/kbukum/diagramkit/export"
	"github.com/kbukum/diagramkit/logger"
	"github.com/kbukum/diagramkit/observability"
	"github.com/kbukum/diagramkit/render"
	"github.com/kbukum/diagramkit/server"
	"github.com/kbukum/diagramkit/validation"
)

// Validator is the validation side of the render package.
type Validator interface {
	Validate(ctx context.Context, code string) (render.ValidationResult, error)
	QuickValidate(ctx context.Context, code string) (render.ValidationResult, error)
}

// Deps are the collaborators of a Handler.
type Deps struct {
	Renderer  export.Renderer
	Validator Validator
	Exporter  *export.Service
	// Health reports component health for /api/health. May be nil.
	Health  func(ctx context.Context) []component.Health
	Service string
	Version string
	// Debug includes error causes in responses.
	Debug  bool
	Logger *logger.Logger
}

// Handler serves the diagram and export endpoints.
type Handler struct {
	deps Deps
	log  *logger.Logger
	now  func() time.Time
}

// New creates a Handler.
func New(deps Deps) *Handler {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{deps: deps, log: log.WithComponent("api"), now: time.Now}
}

// Register mounts every route under /api.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/health", h.Health)

	d := api.Group("/diagram")
	d.POST("/validate", h.Validate)
	d.POST("/quick-validate", h.QuickValidate)
	d.POST("/render", h.Render)
	d.GET("/types", h.Types)
	d.GET("/example", h.Example)
	d.GET("/example/:type", h.Example)

	e := api.Group("/export")
	e.POST("/download", h.Download)
	e.GET("/presets", h.Presets)
	e.POST("/estimate", h.Estimate)
	e.POST("/batch", h.Batch)
	e.POST("/preview", h.Preview)
}

func (h *Handler) fail(c *gin.Context, err error) {
	server.RespondWithError(c, err, h.deps.Debug)
}

func noCode() *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeMissingField, "No diagram code provided", http.StatusBadRequest).
		WithDetail("field", "code")
}

// bind decodes an optional JSON body into dst and runs its validate tags.
func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !stderrors.Is(err, io.EOF) {
		return apperrors.InvalidInput("body", "Invalid request body: "+err.Error())
	}
	return validation.Validate(dst)
}

// Health reports service and component health.
func (h *Handler) Health(c *gin.Context) {
	sh := observability.NewServiceHealth(h.deps.Service, h.deps.Version, h.now().UTC().Format(time.RFC3339))
	if h.deps.Health != nil {
		for _, ch := range h.deps.Health(c.Request.Context()) {
			sh.AddComponent(ch)
		}
	}
	status := http.StatusOK
	if sh.Status == observability.HealthDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, sh)
}

type codeRequest struct {
	Code string `json:"code"`
}

// Validate runs the full validation.
func (h *Handler) Validate(c *gin.Context) {
	var req codeRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.Code == "" {
		h.fail(c, noCode())
		return
	}
	res, err := h.deps.Validator.Validate(c.Request.Context(), req.Code)
	if err != nil {
		h.fail(c, err)
		return
	}
	server.RespondOK(c, res)
}

// QuickValidate runs the lightweight validation.
func (h *Handler) QuickValidate(c *gin.Context) {
	var req codeRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.deps.Validator.QuickValidate(c.Request.Context(), req.Code)
	if err != nil {
		h.fail(c, err)
		return
	}
	server.RespondOK(c, res)
}

type renderOptions struct {
	Format diagram.Format `json:"format"`
	Theme  diagram.Theme  `json:"theme"`
	Width  int            `json:"width" validate:"gte=0,lte=10000"`
	Height int            `json:"height" validate:"gte=0,lte=10000"`
	Scale  float64        `json:"scale" validate:"gte=0,lte=10"`
}

type renderRequest struct {
	Code    string        `json:"code"`
	Options renderOptions `json:"options"`
}

// Render renders a preview.
func (h *Handler) Render(c *gin.Context) {
	var req renderRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.Code == "" {
		h.fail(c, noCode())
		return
	}
	res, err := h.deps.Renderer.Render(c.Request.Context(), req.Code, diagram.Options(req.Options))
	if err != nil {
		h.fail(c, err)
		return
	}
	server.RespondOK(c, res)
}

// Types lists the supported diagram types.
func (h *Handler) Types(c *gin.Context) {
	server.RespondOK(c, gin.H{"types": diagram.SupportedTypes()})
}

// Example returns a starter diagram.
func (h *Handler) Example(c *gin.Context) {
	kind := c.Param("type")
	if kind == "" {
		kind = "flowchart"
	}
	server.RespondOK(c, gin.H{"type": kind, "example": diagram.Example(kind)})
}
