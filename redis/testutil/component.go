package testutil

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/kvbridge/component"
	"github.com/kbukum/kvbridge/redis"
	"github.com/kbukum/kvbridge/testutil"
)

// Component is an in-memory Redis store backed by miniredis. Start gives
// it a Handle configured to the in-memory server, so bridge code under
// test runs against a real protocol peer.
type Component struct {
	mini    *miniredis.Miniredis
	handle  *redis.Handle
	started bool
	mu      sync.RWMutex
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
)

// NewComponent creates a new in-memory Redis test component.
func NewComponent() *Component {
	return &Component{}
}

// Snapshot is the state captured by Component.Snapshot.
type Snapshot struct {
	Strings map[string]string
	Lists   map[string][]string
}

// Name returns the component name.
func (c *Component) Name() string { return "redis-test" }

// Handle returns a handle to the in-memory server, or nil before Start.
func (c *Component) Handle() *redis.Handle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handle
}

// Config returns a redis.Config addressing the in-memory server.
func (c *Component) Config() redis.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.configLocked()
}

func (c *Component) configLocked() redis.Config {
	if c.mini == nil {
		return redis.Config{}
	}
	port, _ := strconv.Atoi(c.mini.Port())
	return redis.Config{Host: c.mini.Host(), Port: port}
}

// Server returns the miniredis instance for direct inspection, or nil
// before Start.
func (c *Component) Server() *miniredis.Miniredis {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mini
}

// Start launches the in-memory Redis server.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("component already started")
	}

	mini, err := miniredis.Run()
	if err != nil {
		return fmt.Errorf("failed to start miniredis: %w", err)
	}

	c.mini = mini
	cfg := c.configLocked()
	c.handle = redis.NewHandle(func() redis.Config { return cfg }, nil)
	c.started = true
	return nil
}

// Stop shuts down the in-memory Redis server.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return nil
	}
	if c.handle != nil {
		_ = c.handle.Close()
	}
	if c.mini != nil {
		c.mini.Close()
	}
	c.started = false
	return nil
}

// Health returns the health status.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "not started",
		}
	}
	return component.Health{
		Name:   c.Name(),
		Status: component.StatusHealthy,
	}
}

// Reset flushes all keys.
func (c *Component) Reset(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return fmt.Errorf("component not started")
	}
	c.mini.FlushAll()
	return nil
}

// Snapshot captures every string and list key.
func (c *Component) Snapshot(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return nil, fmt.Errorf("component not started")
	}

	snap := Snapshot{
		Strings: make(map[string]string),
		Lists:   make(map[string][]string),
	}
	for _, key := range c.mini.Keys() {
		switch c.mini.Type(key) {
		case "string":
			if val, err := c.mini.Get(key); err == nil {
				snap.Strings[key] = val
			}
		case "list":
			if vals, err := c.mini.List(key); err == nil {
				snap.Lists[key] = vals
			}
		}
	}
	return snap, nil
}

// Restore replaces the server contents with a Snapshot.
func (c *Component) Restore(_ context.Context, s interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return fmt.Errorf("component not started")
	}

	snap, ok := s.(Snapshot)
	if !ok {
		return fmt.Errorf("invalid snapshot type: expected Snapshot, got %T", s)
	}

	c.mini.FlushAll()
	for key, val := range snap.Strings {
		if err := c.mini.Set(key, val); err != nil {
			return fmt.Errorf("failed to restore key %q: %w", key, err)
		}
	}
	for key, vals := range snap.Lists {
		for _, v := range vals {
			if _, err := c.mini.Push(key, v); err != nil {
				return fmt.Errorf("failed to restore list %q: %w", key, err)
			}
		}
	}
	return nil
}
