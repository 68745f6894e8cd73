package render

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/diagramkit/diagram"
	apperrors "github.com/kbukum/diagramkit/errors"
	"github.com/kbukum/diagramkit/logger"
	"github.com/kbukum/diagramkit/observability"
	"github.com/kbukum/diagramkit/renderer"
	"github.com/kbukum/diagramkit/resilience"
	"github.com/kbukum/diagramkit/workspace"
)

// Pipeline renders diagram source into artifacts.
type Pipeline struct {
	catalog    *diagram.Catalog
	workspace  *workspace.Manager
	renderer   renderer.Renderer
	bulkhead   *resilience.Bulkhead
	normalizer *Normalizer
	metrics    *observability.Metrics
	timeout    time.Duration
	log        *logger.Logger
}

// NewPipeline creates a Pipeline. cfg must have defaults applied.
func NewPipeline(catalog *diagram.Catalog, ws *workspace.Manager, r renderer.Renderer, cfg renderer.Config, log *logger.Logger, opts ...Option) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	s := applyOptions(cfg.MaxConcurrent, opts)
	return &Pipeline{
		catalog:    catalog,
		workspace:  ws,
		renderer:   r,
		bulkhead:   s.bulkhead,
		normalizer: NewNormalizer(s.rules),
		metrics:    s.metrics,
		timeout:    cfg.Timeout(),
		log:        log.WithComponent("render"),
	}
}

// Catalog returns the catalog the pipeline checks options against.
func (p *Pipeline) Catalog() *diagram.Catalog { return p.catalog }

// Render renders code with opts. Zero option fields take catalog defaults.
func (p *Pipeline) Render(ctx context.Context, code string, opts diagram.Options) (*RenderResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.MissingField("code")
	}
	opts = p.catalog.Resolve(opts)
	if appErr := p.catalog.Check(opts); appErr != nil {
		return nil, appErr
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanRenderPipeline, trace.WithAttributes(
		attribute.String(observability.AttrFormat, string(opts.Format)),
		attribute.String(observability.AttrTheme, string(opts.Theme)),
	))
	start := time.Now()
	p.metrics.RenderStarted(ctx)

	var (
		result   *RenderResult
		size     int
		err      error
		returned bool
	)
	defer func() {
		status := "ok"
		switch {
		case !returned:
			status = string(apperrors.ErrCodeInternal)
		case err != nil:
			status = string(errorCode(err))
		}
		p.metrics.RenderFinished(ctx, string(opts.Format), status, size, time.Since(start))
		span.SetAttributes(attribute.Int(observability.AttrBytes, size))
		observability.EndSpan(span, err, statusCode(err))
	}()

	result, size, err = p.render(ctx, code, opts)
	returned = true

	fields := logger.Fields(
		logger.FieldFormat, opts.Format,
		logger.FieldTheme, opts.Theme,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	)
	if err != nil {
		fields[logger.FieldStatus] = errorCode(err)
		fields[logger.FieldError] = err.Error()
		p.log.WithContext(ctx).Warn("Render failed", fields)
		return nil, err
	}
	fields[logger.FieldBytes] = size
	p.log.WithContext(ctx).Info("Render completed", fields)
	return result, nil
}

func (p *Pipeline) render(ctx context.Context, code string, opts diagram.Options) (*RenderResult, int, error) {
	release, err := p.bulkhead.Acquire(ctx)
	if err != nil {
		p.metrics.RecordRejection(ctx, "bulkhead")
		return nil, 0, apperrors.ServiceUnavailable("renderer").WithCause(err)
	}
	defer release()

	lease := p.workspace.Lease()
	defer lease.Release()

	input := lease.Allocate("mmd")
	output := lease.Allocate(string(opts.Format))

	if err := os.WriteFile(input.Path, []byte(code), 0o600); err != nil {
		return nil, 0, apperrors.IO("Render preparation failed", err)
	}

	job := renderer.Job{
		Input:  input.Path,
		Output: output.Path,
		Params: renderer.Params{
			Format: opts.Format,
			Theme:  opts.Theme,
			Width:  opts.Width,
			Height: opts.Height,
			Scale:  opts.Scale,
		},
		Timeout: p.timeout,
	}
	if err := p.renderer.Render(ctx, job); err != nil {
		return nil, 0, p.engineFailure(err)
	}

	data, err := os.ReadFile(output.Path)
	if err != nil {
		return nil, 0, apperrors.IO("Failed to read output", err)
	}

	return &RenderResult{
		Success:     true,
		Data:        base64.StdEncoding.EncodeToString(data),
		Format:      opts.Format,
		ContentType: p.catalog.ContentType(opts.Format),
	}, len(data), nil
}

func (p *Pipeline) engineFailure(err error) *apperrors.AppError {
	d := diagnose(err)
	switch {
	case d.timedOut:
		return apperrors.Timeout("render", err)
	case d.canceled:
		return apperrors.Canceled("render", err)
	}
	return apperrors.RenderFailed(p.normalizer.Normalize(d.text), err)
}

// diagnosis is what a renderer error says about the run.
type diagnosis struct {
	text     string
	timedOut bool
	canceled bool
}

// diagnose extracts the diagnostic text of a renderer error and whether
// the run hit its deadline or lost its caller. A deadline wins over a
// cancellation.
func diagnose(err error) diagnosis {
	d := diagnosis{
		text:     err.Error(),
		timedOut: stderrors.Is(err, context.DeadlineExceeded),
		canceled: stderrors.Is(err, context.Canceled),
	}
	var ee *renderer.EngineError
	if stderrors.As(err, &ee) {
		d.text = ee.Diagnostic
		d.timedOut = d.timedOut || ee.TimedOut
		d.canceled = d.canceled || ee.Canceled
	}
	if d.timedOut {
		d.canceled = false
	}
	return d
}

func errorCode(err error) apperrors.ErrorCode {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Code
	}
	return apperrors.ErrCodeInternal
}

func statusCode(err error) string {
	if err == nil {
		return ""
	}
	return string(errorCode(err))
}
