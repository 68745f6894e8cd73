package render

import (
	"context"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/kbukum/diagramkit/diagram"
	apperrors "github.com/kbukum/diagramkit/errors"
	"github.com/kbukum/diagramkit/logger"
	"github.com/kbukum/diagramkit/observability"
	"github.com/kbukum/diagramkit/renderer"
	"github.com/kbukum/diagramkit/resilience"
	"github.com/kbukum/diagramkit/workspace"
)

const validationSize = 200

var (
	bracketChars = regexp.MustCompile(`[<>{}]`)
	edgeSyntax   = regexp.MustCompile(`-->|---|\.\.\.`)
)

// Validator checks diagram source by rendering it.
type Validator struct {
	workspace  *workspace.Manager
	renderer   renderer.Renderer
	bulkhead   *resilience.Bulkhead
	normalizer *Normalizer
	metrics    *observability.Metrics
	timeout    time.Duration
	log        *logger.Logger
}

// NewValidator creates a Validator. cfg must have defaults applied.
func NewValidator(ws *workspace.Manager, r renderer.Renderer, cfg renderer.Config, log *logger.Logger, opts ...Option) *Validator {
	if log == nil {
		log = logger.Nop()
	}
	s := applyOptions(cfg.MaxConcurrent, opts)
	return &Validator{
		workspace:  ws,
		renderer:   r,
		bulkhead:   s.bulkhead,
		normalizer: NewNormalizer(s.rules),
		metrics:    s.metrics,
		timeout:    cfg.ValidateTimeout(),
		log:        log.WithComponent("validator"),
	}
}

// Validate runs the structural pre-check and then renders code to a small
// SVG. Invalid source is reported in the result; the error is only set
// when no render slot was available or the caller canceled ctx.
func (v *Validator) Validate(ctx context.Context, code string) (ValidationResult, error) {
	if appErr := diagram.Precheck(code); appErr != nil {
		return ValidationResult{Valid: false, Error: appErr.Message}, nil
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanValidate)
	result, err := v.validate(ctx, code)
	observability.EndSpan(span, err, statusCode(err))

	if err == nil {
		v.log.WithContext(ctx).Debug("Validation completed", logger.Fields(
			"valid", result.Valid,
			logger.FieldError, result.Error,
		))
	}
	return result, err
}

func (v *Validator) validate(ctx context.Context, code string) (ValidationResult, error) {
	release, err := v.bulkhead.Acquire(ctx)
	if err != nil {
		v.metrics.RecordRejection(ctx, "bulkhead")
		return ValidationResult{}, apperrors.ServiceUnavailable("validator").WithCause(err)
	}
	defer release()

	lease := v.workspace.Lease()
	defer lease.Release()

	input := lease.Allocate("mmd")
	output := lease.Allocate(string(diagram.FormatSVG))

	if err := os.WriteFile(input.Path, []byte(code), 0o600); err != nil {
		return ValidationResult{Valid: false, Error: "File operation failed: " + err.Error()}, nil
	}

	err = v.renderer.Render(ctx, renderer.Job{
		Input:  input.Path,
		Output: output.Path,
		Params: renderer.Params{
			Format: diagram.FormatSVG,
			Theme:  diagram.ThemeDefault,
			Width:  validationSize,
			Height: validationSize,
		},
		Timeout: v.timeout,
	})
	if err != nil {
		d := diagnose(err)
		switch {
		case d.timedOut:
			return ValidationResult{Valid: false, Error: "Rendering timed out"}, nil
		case d.canceled:
			return ValidationResult{}, apperrors.Canceled("validate", err)
		}
		return ValidationResult{Valid: false, Error: v.normalizer.Normalize(d.text)}, nil
	}
	return ValidationResult{Valid: true}, nil
}

// QuickValidate rejects blank source and source without a diagram
// declaration before falling through to Validate.
func (v *Validator) QuickValidate(ctx context.Context, code string) (ValidationResult, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return ValidationResult{Valid: false, Error: "Empty diagram"}, nil
	}
	if !diagram.HasKeyword(trimmed, diagram.Keywords) {
		return ValidationResult{Valid: false, Error: "Invalid diagram type or missing diagram declaration"}, nil
	}

	// Brackets without edge syntax are only a hint; they never reject.
	if bracketChars.MatchString(code) && !edgeSyntax.MatchString(code) {
		v.log.WithContext(ctx).Debug("Diagram has suspicious characters", logger.Fields(
			"lines", len(strings.Split(trimmed, "\n")),
		))
	}
	return v.Validate(ctx, code)
}
