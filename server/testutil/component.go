package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/kvbridge/component"
	"github.com/kbukum/kvbridge/logger"
	"github.com/kbukum/kvbridge/server"
	"github.com/kbukum/kvbridge/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// RouteSetup registers routes on a freshly built server.
type RouteSetup func(s *server.Server)

// Component is a test HTTP server backed by httptest.Server. Routes are
// registered by the setup function, which runs again on Reset.
type Component struct {
	setup RouteSetup
	srv   *server.Server
	ts    *httptest.Server
	log   *logger.Logger
	mu    sync.RWMutex
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
)

// NewComponent creates a test server component. setup may be nil.
func NewComponent(setup RouteSetup) *Component {
	return &Component{setup: setup, log: logger.NewNop()}
}

func (c *Component) build() {
	cfg := server.Config{Host: "127.0.0.1", Enabled: true}
	cfg.ApplyDefaults()
	c.srv = server.New(cfg, c.log)
	c.srv.ApplyMiddleware(nil)
	if c.setup != nil {
		c.setup(c.srv)
	}
	c.ts = httptest.NewServer(c.srv.Handler())
}

// Server returns the underlying *server.Server, nil before Start.
func (c *Component) Server() *server.Server {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.srv
}

// BaseURL returns the test server's base URL, or "" before Start.
func (c *Component) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ts == nil {
		return ""
	}
	return c.ts.URL
}

// Name returns the component name.
func (c *Component) Name() string { return "http-server-test" }

// Start builds the server and starts serving.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ts != nil {
		return fmt.Errorf("component already started")
	}
	c.build()
	return nil
}

// Stop closes the test server.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ts == nil {
		return nil
	}
	c.ts.Close()
	c.ts = nil
	return nil
}

// Health reports healthy while serving.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ts == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Reset rebuilds the server with a fresh engine and routes.
func (c *Component) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ts == nil {
		return fmt.Errorf("component not started")
	}
	c.ts.Close()
	c.build()
	return nil
}

// Snapshot is a no-op; the server holds no state.
func (c *Component) Snapshot(_ context.Context) (interface{}, error) {
	return nil, nil
}

// Restore is a no-op.
func (c *Component) Restore(_ context.Context, _ interface{}) error {
	return nil
}
