package component

import (
	"context"
	"fmt"
	"sync"
)

// Lazy defers expensive setup until first use. The headless browser engine
// uses it so Chrome is only launched when a render actually needs it.
type Lazy struct {
	name        string
	mu          sync.RWMutex
	initialized bool
	initializer func(ctx context.Context) error
	closer      func() error
}

// NewLazy creates a lazy initializer with the given setup function.
func NewLazy(name string, initializer func(context.Context) error) *Lazy {
	return &Lazy{
		name:        name,
		initializer: initializer,
	}
}

// Name returns the component name.
func (l *Lazy) Name() string {
	return l.name
}

// Initialize runs the initializer once. A failed attempt is retried on the
// next call.
func (l *Lazy) Initialize(ctx context.Context) error {
	l.mu.RLock()
	if l.initialized {
		l.mu.RUnlock()
		return nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialized {
		return nil
	}
	if l.initializer == nil {
		return fmt.Errorf("no initializer for component: %s", l.name)
	}
	if err := l.initializer(ctx); err != nil {
		return fmt.Errorf("failed to initialize %s: %w", l.name, err)
	}
	l.initialized = true
	return nil
}

// IsInitialized returns whether initialization has succeeded.
func (l *Lazy) IsInitialized() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.initialized
}

// Close runs the closer if initialized and resets the state.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	if l.closer != nil && l.initialized {
		err = l.closer()
	}
	l.initialized = false
	return err
}

// WithCloser sets the function Close runs.
func (l *Lazy) WithCloser(fn func() error) *Lazy {
	l.closer = fn
	return l
}
