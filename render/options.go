package render

import (
	"github.com/kbukum/diagramkit/observability"
	"github.com/kbukum/diagramkit/resilience"
)

type settings struct {
	rules    []Rule
	metrics  *observability.Metrics
	bulkhead *resilience.Bulkhead
}

// Option configures a Pipeline or a Validator.
type Option func(*settings)

// WithRules replaces the default normalization rules.
func WithRules(rules []Rule) Option {
	return func(s *settings) { s.rules = rules }
}

// WithMetrics records render metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithBulkhead shares b as the concurrency limit. The pipeline and the
// validator should share one so validations count against renders.
func WithBulkhead(b *resilience.Bulkhead) Option {
	return func(s *settings) { s.bulkhead = b }
}

func applyOptions(maxConcurrent int, opts []Option) settings {
	s := settings{rules: DefaultRules()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.metrics == nil {
		s.metrics = observability.NopMetrics()
	}
	if s.bulkhead == nil {
		s.bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{Name: "renderer", MaxConcurrent: maxConcurrent})
	}
	return s
}
