package main

import (
	"fmt"

	"github.com/kbukum/kvbridge/bridge"
	"github.com/kbukum/kvbridge/config"
	"github.com/kbukum/kvbridge/observability"
	"github.com/kbukum/kvbridge/redis"
	"github.com/kbukum/kvbridge/server"
	"github.com/kbukum/kvbridge/version"
)

const serviceName = "kvbridge"

// AppConfig is the configuration of the kvbridge binary. Every field can be
// set from config.yml or the environment (REDIS_HOST, SERVER_PORT, ...).
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Redis     redis.Config         `yaml:"redis" mapstructure:"redis"`
	Bridge    bridge.Config        `yaml:"bridge" mapstructure:"bridge"`
	Server    server.Config        `yaml:"server" mapstructure:"server"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults fills unset fields. Logs go to stderr so command output on
// stdout stays machine readable.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Get().Version
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
	c.ServiceConfig.ApplyDefaults()

	if c.Redis.Configured() {
		c.Redis.ApplyDefaults()
	}
	c.Bridge.ApplyDefaults()
	c.Server.ApplyDefaults()

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.Name
	}
	if c.Telemetry.ServiceVersion == "" {
		c.Telemetry.ServiceVersion = c.Version
	}
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = c.Environment
	}
	c.Telemetry.ApplyDefaults()
}

// Validate checks every section. The redis section is only checked when a
// host is configured; without one, operations fail as unavailable.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if c.Redis.Configured() {
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if err := c.Bridge.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	return nil
}
