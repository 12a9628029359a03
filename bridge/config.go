package bridge

import (
	"fmt"
	"time"

	"github.com/kbukum/kvbridge/logger"
	"github.com/kbukum/kvbridge/observability"
)

// DefaultPingTimeout applies when the timeout option is absent or falsy.
const DefaultPingTimeout = 5000 * time.Millisecond

// Config tunes bridge behavior. The zero value matches the historical
// semantics: write failures are logged and swallowed, and log_insert pushes
// to the literal, unresolved key.
type Config struct {
	// SurfaceWriteErrors makes Insert and LogInsert return store failures
	// instead of only logging them.
	SurfaceWriteErrors bool `yaml:"surface_write_errors" mapstructure:"surface_write_errors"`

	// ResolveLogKey passes the log_insert key through the resolver like
	// every other field.
	ResolveLogKey bool `yaml:"resolve_log_key" mapstructure:"resolve_log_key"`

	// PingTimeout replaces DefaultPingTimeout.
	PingTimeout time.Duration `yaml:"ping_timeout" mapstructure:"ping_timeout"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.PingTimeout <= 0 {
		c.PingTimeout = DefaultPingTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.PingTimeout < 0 {
		return fmt.Errorf("bridge.ping_timeout must not be negative (got: %s)", c.PingTimeout)
	}
	return nil
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithConfig sets the bridge configuration.
func WithConfig(cfg Config) Option {
	return func(b *Bridge) { b.cfg = cfg }
}

// WithLogger sets the logger. Operations log under the "bridge" component.
func WithLogger(l *logger.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// WithMetrics records operation metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *Bridge) { b.metrics = m }
}
