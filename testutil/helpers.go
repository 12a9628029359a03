package testutil

import (
	"context"
	"testing"
)

// THelper ties TestComponent lifecycles to a testing.TB.
type THelper struct {
	t   testing.TB
	ctx context.Context
}

// T wraps t. Components started through the helper stop when the test ends.
//
//	func TestQuery(t *testing.T) {
//	    store := redistest.NewComponent()
//	    testutil.T(t).Setup(store)
//	}
func T(t testing.TB) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets the context passed to component calls.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts each component and registers its Stop as test cleanup.
func (h *THelper) Setup(components ...TestComponent) {
	h.t.Helper()
	for _, c := range components {
		if err := c.Start(h.ctx); err != nil {
			h.t.Fatalf("failed to start component %s: %v", c.Name(), err)
		}
		c := c
		h.t.Cleanup(func() {
			if err := c.Stop(h.ctx); err != nil {
				h.t.Errorf("failed to stop component %s: %v", c.Name(), err)
			}
		})
	}
}

// Reset resets each component.
func (h *THelper) Reset(components ...TestComponent) {
	h.t.Helper()
	for _, c := range components {
		if err := c.Reset(h.ctx); err != nil {
			h.t.Fatalf("failed to reset component %s: %v", c.Name(), err)
		}
	}
}

// Snapshot captures the state of a component.
func (h *THelper) Snapshot(c TestComponent) interface{} {
	h.t.Helper()
	snap, err := c.Snapshot(h.ctx)
	if err != nil {
		h.t.Fatalf("failed to snapshot component %s: %v", c.Name(), err)
	}
	return snap
}

// Restore returns a component to a captured state.
func (h *THelper) Restore(c TestComponent, snapshot interface{}) {
	h.t.Helper()
	if err := c.Restore(h.ctx, snapshot); err != nil {
		h.t.Fatalf("failed to restore component %s: %v", c.Name(), err)
	}
}
