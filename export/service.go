package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/diagramkit/diagram"
	apperrors "github.com/kbukum/diagramkit/errors"
	"github.com/kbukum/diagramkit/logger"
	"github.com/kbukum/diagramkit/observability"
	"github.com/kbukum/diagramkit/render"
	"github.com/kbukum/diagramkit/util"
)

const (
	defaultFormat   = diagram.FormatPNG
	defaultQuality  = "high"
	defaultFilename = "diagram"
	timestampLayout = "2006-01-02T15-04-05"
	isoLayout       = "2006-01-02T15:04:05.000Z07:00"
)

// Renderer is the part of render.Pipeline the export service uses.
type Renderer interface {
	Render(ctx context.Context, code string, opts diagram.Options) (*render.RenderResult, error)
}

// Options are the caller's export choices. Zero fields take the defaults
// png, high, 1, default and "diagram".
type Options struct {
	Format   diagram.Format `json:"format,omitempty"`
	Quality  string         `json:"quality,omitempty"`
	Scale    float64        `json:"scale,omitempty"`
	Theme    diagram.Theme  `json:"theme,omitempty"`
	Filename string         `json:"filename,omitempty"`
}

// Metadata describes how an artifact was produced.
type Metadata struct {
	Format     diagram.Format `json:"format"`
	Quality    string         `json:"quality"`
	Theme      diagram.Theme  `json:"theme"`
	Dimensions string         `json:"dimensions"`
	Scale      float64        `json:"scale"`
	Timestamp  string         `json:"timestamp"`
}

// Result is an exported artifact.
type Result struct {
	Success     bool     `json:"success"`
	Data        string   `json:"data"`
	Filename    string   `json:"filename"`
	ContentType string   `json:"contentType"`
	Size        int      `json:"size"`
	Metadata    Metadata `json:"metadata"`
}

// BatchResult is one entry of a batch export.
type BatchResult struct {
	Success     bool      `json:"success"`
	Data        string    `json:"data,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	Size        int       `json:"size,omitempty"`
	Metadata    *Metadata `json:"metadata,omitempty"`
	Error       string    `json:"error,omitempty"`
	Config      Options   `json:"config"`
}

// Catalogue lists what an export may ask for.
type Catalogue struct {
	Formats        []diagram.Format `json:"formats"`
	Themes         []diagram.Theme  `json:"themes"`
	QualityPresets []diagram.Preset `json:"qualityPresets"`
}

// job is the resolved form of one export request.
type job struct {
	render   diagram.Options
	quality  string
	filename string
}

// Service exports diagrams.
type Service struct {
	catalog  *diagram.Catalog
	renderer Renderer
	log      *logger.Logger
	now      func() time.Time
}

// NewService creates a Service rendering through r.
func NewService(catalog *diagram.Catalog, r Renderer, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		catalog:  catalog,
		renderer: r,
		log:      log.WithComponent("export"),
		now:      time.Now,
	}
}

// ResolvePreset returns the quality preset called name.
func (s *Service) ResolvePreset(name string) (diagram.Preset, error) {
	p, ok := s.catalog.Preset(name)
	if !ok {
		return diagram.Preset{}, apperrors.InvalidInput("quality",
			fmt.Sprintf("Invalid quality preset: %s. Available: %s", name, strings.Join(s.catalog.PresetNames(), ", "))).
			WithDetail("value", name)
	}
	return p, nil
}

func (s *Service) prepare(opts Options) (job, error) {
	if opts.Format == "" {
		opts.Format = defaultFormat
	}
	if opts.Quality == "" {
		opts.Quality = defaultQuality
	}
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	if opts.Theme == "" {
		opts.Theme = s.catalog.Defaults().Theme
	}

	if !s.catalog.HasFormat(opts.Format) {
		return job{}, apperrors.Unsupported("format", string(opts.Format), s.catalog.FormatNames())
	}
	preset, err := s.ResolvePreset(opts.Quality)
	if err != nil {
		return job{}, err
	}
	if !s.catalog.HasTheme(opts.Theme) {
		return job{}, apperrors.Unsupported("theme", string(opts.Theme), s.catalog.ThemeNames())
	}
	if !(opts.Scale > 0) {
		return job{}, apperrors.InvalidInput("scale", fmt.Sprintf("Invalid scale: %g. Must be greater than 0", opts.Scale))
	}

	return job{
		render: diagram.Options{
			Format: opts.Format,
			Theme:  opts.Theme,
			Width:  preset.Width,
			Height: preset.Height,
			Scale:  preset.Scale * opts.Scale,
		},
		quality:  preset.Name,
		filename: util.SanitizeFilename(opts.Filename, defaultFilename),
	}, nil
}

// Export renders code with the preset named by opts.Quality and packages
// the artifact. Errors keep their code and get an "Export failed: " prefix.
func (s *Service) Export(ctx context.Context, code string, opts Options) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanExport, trace.WithAttributes(
		attribute.String(observability.AttrQuality, opts.Quality),
	))
	res, err := s.export(ctx, code, opts)
	observability.EndSpan(span, err, "")
	if err != nil {
		s.log.WithContext(ctx).Warn("Export failed", logger.Fields(
			logger.FieldFormat, opts.Format,
			logger.FieldQuality, opts.Quality,
			logger.FieldError, err.Error(),
		))
		return nil, wrap(err)
	}
	return res, nil
}

func (s *Service) export(ctx context.Context, code string, opts Options) (*Result, error) {
	j, err := s.prepare(opts)
	if err != nil {
		return nil, err
	}

	rendered, err := s.renderer.Render(ctx, code, j.render)
	if err != nil {
		return nil, err
	}
	if !rendered.Success {
		return nil, apperrors.RenderFailed("Rendering failed", nil)
	}
	data, err := rendered.Bytes()
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := s.now().UTC()
	return &Result{
		Success:     true,
		Data:        rendered.Data,
		Filename:    fmt.Sprintf("%s-%s.%s", j.filename, now.Format(timestampLayout), j.render.Format),
		ContentType: rendered.ContentType,
		Size:        len(data),
		Metadata: Metadata{
			Format:     j.render.Format,
			Quality:    j.quality,
			Theme:      j.render.Theme,
			Dimensions: fmt.Sprintf("%dx%d", j.render.Width, j.render.Height),
			Scale:      j.render.Scale,
			Timestamp:  now.Format(isoLayout),
		},
	}, nil
}

func wrap(err error) error {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Wrap("Export failed")
	}
	return apperrors.Internal(err).Wrap("Export failed")
}

// Preview exports code as SVG regardless of opts.Format.
func (s *Service) Preview(ctx context.Context, code string, opts Options) (*Result, error) {
	opts.Format = diagram.FormatSVG
	return s.Export(ctx, code, opts)
}

// BatchExport exports code once per configuration, in order. A failing
// configuration yields an unsuccessful entry and the rest still run.
func (s *Service) BatchExport(ctx context.Context, code string, configs []Options) []BatchResult {
	results := make([]BatchResult, 0, len(configs))
	for _, cfg := range configs {
		res, err := s.Export(ctx, code, cfg)
		if err != nil {
			results = append(results, BatchResult{Success: false, Error: errorMessage(err), Config: cfg})
			continue
		}
		md := res.Metadata
		results = append(results, BatchResult{
			Success:     true,
			Data:        res.Data,
			Filename:    res.Filename,
			ContentType: res.ContentType,
			Size:        res.Size,
			Metadata:    &md,
			Config:      cfg,
		})
	}
	return results
}

func errorMessage(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// Presets returns the formats, themes and quality presets on offer.
func (s *Service) Presets() Catalogue {
	return Catalogue{
		Formats:        s.catalog.Formats(),
		Themes:         s.catalog.Themes(),
		QualityPresets: s.catalog.Presets(),
	}
}
