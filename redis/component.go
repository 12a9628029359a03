package redis

import (
	"context"
	"fmt"

	"github.com/kbukum/kvbridge/component"
	apperrors "github.com/kbukum/kvbridge/errors"
	"github.com/kbukum/kvbridge/logger"
)

// Component exposes a Handle to the component registry so long-running
// processes verify connectivity at startup and report it in /health.
type Component struct {
	handle *Handle
	log    *logger.Logger
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a Redis component over handle.
func NewComponent(handle *Handle, log *logger.Logger) *Component {
	if log == nil {
		log = logger.NewNop()
	}
	return &Component{handle: handle, log: log.WithComponent("redis")}
}

// Handle returns the wrapped handle.
func (c *Component) Handle() *Handle { return c.handle }

// Name returns the component name.
func (c *Component) Name() string { return "redis" }

// Start resolves the client and pings it. A missing configuration is not a
// startup failure; operations report it when they run.
func (c *Component) Start(ctx context.Context) error {
	client, err := c.handle.Client(ctx)
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeServiceUnavailable && appErr.Cause == nil {
		c.log.Warn("Redis not configured; operations will fail until a client is available")
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis start: %w", err)
	}

	if _, err := client.Ping(ctx); err != nil {
		return fmt.Errorf("redis start ping: %w", err)
	}

	c.log.Info("Redis component started", map[string]interface{}{"addr": client.Config().Addr()})
	return nil
}

// Stop closes the client the handle owns.
func (c *Component) Stop(_ context.Context) error {
	c.log.Info("Redis component stopping")
	return c.handle.Close()
}

// Health pings the store.
func (c *Component) Health(ctx context.Context) component.Health {
	client, err := c.handle.Client(ctx)
	if err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: err.Error(),
		}
	}

	if _, err := client.Ping(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}

	return component.Health{
		Name:   c.Name(),
		Status: component.StatusHealthy,
	}
}

// Describe returns summary info for the startup banner.
func (c *Component) Describe() component.Description {
	client, err := c.handle.Client(context.Background())
	if err != nil {
		return component.Description{Name: "Redis", Type: "redis", Details: "not configured"}
	}
	cfg := client.Config()
	details := fmt.Sprintf("%s db=%d pool=%d", cfg.Addr(), cfg.DB, cfg.PoolSize)
	if tlsCfg := cfg.TLSConfig(); tlsCfg.IsEnabled() {
		details += " tls"
	}
	return component.Description{
		Name:    "Redis",
		Type:    "redis",
		Details: details,
		Port:    cfg.Port,
	}
}
