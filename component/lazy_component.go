package component

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kbukum/kvbridge/logger"
)

// Lazy runs an initializer on first use. Concurrent first callers wait for
// one run; a failed run is retried by the next caller; Close resets it.
type Lazy struct {
	name   string
	init   func(ctx context.Context) error
	closer func() error

	mu      sync.Mutex
	ready   atomic.Bool
	lastErr error
}

// NewLazy returns a Lazy that runs init on first Initialize.
func NewLazy(name string, init func(context.Context) error) *Lazy {
	return &Lazy{name: name, init: init}
}

// WithCloser sets the function Close runs after a successful init.
func (l *Lazy) WithCloser(fn func() error) *Lazy {
	l.closer = fn
	return l
}

func (l *Lazy) Name() string { return l.name }

// Initialize runs init unless a previous run succeeded.
func (l *Lazy) Initialize(ctx context.Context) error {
	if l.ready.Load() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ready.Load() {
		return nil
	}
	if l.init == nil {
		return fmt.Errorf("no initializer for component: %s", l.name)
	}

	if err := l.init(ctx); err != nil {
		l.lastErr = err
		return fmt.Errorf("failed to initialize %s: %w", l.name, err)
	}
	l.lastErr = nil
	l.ready.Store(true)
	logger.Debug("Lazy component initialized", map[string]interface{}{"component": l.name})
	return nil
}

// IsInitialized reports whether init has succeeded since the last Close.
func (l *Lazy) IsInitialized() bool {
	return l.ready.Load()
}

// LastError is the error of the latest failed run, nil after a success.
func (l *Lazy) LastError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Close runs the closer if init had succeeded and allows init to run again.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.ready.Load() {
		return nil
	}
	l.ready.Store(false)
	if l.closer != nil {
		return l.closer()
	}
	return nil
}
