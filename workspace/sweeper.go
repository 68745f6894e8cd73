package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/diagramkit/component"
	"github.com/kbukum/diagramkit/logger"
	"github.com/kbukum/diagramkit/observability"
)

var (
	_ component.Component   = (*Sweeper)(nil)
	_ component.Describable = (*Sweeper)(nil)
)

// Sweeper periodically removes stale workspace files.
type Sweeper struct {
	manager   *Manager
	retention time.Duration
	interval  time.Duration
	metrics   *observability.Metrics
	log       *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	last    SweepReport
	lastErr error
	lastRun time.Time
}

// NewSweeper creates a Sweeper for m using cfg's retention and interval.
// A nil metrics records nothing.
func NewSweeper(m *Manager, cfg Config, metrics *observability.Metrics) *Sweeper {
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &Sweeper{
		manager:   m,
		retention: cfg.Retention,
		interval:  cfg.SweepInterval,
		metrics:   metrics,
		log:       m.log.WithComponent("sweeper"),
	}
}

// Name returns the component name.
func (s *Sweeper) Name() string { return "workspace-sweeper" }

// Start launches the ticker goroutine.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(runCtx, s.done)
	return nil
}

// Stop stops the ticker goroutine and waits for an in-flight pass.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sweeper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.SweepNow(ctx)
		}
	}
}

// SweepNow runs one pass synchronously.
func (s *Sweeper) SweepNow(ctx context.Context) (SweepReport, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanSweep)
	start := time.Now()
	report, err := s.manager.Sweep(ctx, s.retention)
	observability.EndSpan(span, err, "")

	s.metrics.RecordSweep(ctx, report.Removed, report.Failed)

	s.mu.Lock()
	s.last, s.lastErr, s.lastRun = report, err, time.Now()
	s.mu.Unlock()

	fields := logger.Fields(
		"scanned", report.Scanned,
		"removed", report.Removed,
		"failed", report.Failed,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	)
	switch {
	case err != nil:
		fields[logger.FieldError] = err.Error()
		s.log.Warn("Workspace sweep aborted", fields)
	case report.Removed > 0 || report.Failed > 0:
		s.log.Info("Workspace sweep completed", fields)
	default:
		s.log.Debug("Workspace sweep completed", fields)
	}
	return report, err
}

// Health reports the result of the last pass.
func (s *Sweeper) Health(ctx context.Context) component.Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.lastErr != nil:
		return component.Health{Name: s.Name(), Status: component.StatusDegraded, Message: s.lastErr.Error()}
	case s.last.Failed > 0:
		return component.Health{Name: s.Name(), Status: component.StatusDegraded,
			Message: fmt.Sprintf("%d entries could not be removed", s.last.Failed)}
	default:
		return component.Health{Name: s.Name(), Status: component.StatusHealthy}
	}
}

// Describe returns summary info for the startup display.
func (s *Sweeper) Describe() component.Description {
	return component.Description{
		Name:    "Workspace",
		Type:    "sweeper",
		Details: fmt.Sprintf("%s every=%s retention=%s", s.manager.Root(), s.interval, s.retention),
	}
}
