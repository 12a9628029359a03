package redis

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/kbukum/kvbridge/security"
	"github.com/kbukum/kvbridge/validation"
)

// Environment variables read by LoadEnvConfig.
const (
	EnvHost     = "REDIS_HOST"
	EnvPort     = "REDIS_PORT"
	EnvDB       = "REDIS_DB"
	EnvUser     = "REDIS_USER"
	EnvPassword = "REDIS_PASSWORD"
	EnvTLS      = "REDIS_TLS"

	EnvCAFile     = "REDIS_CA_FILE"
	EnvCertFile   = "REDIS_CERT_FILE"
	EnvKeyFile    = "REDIS_KEY_FILE"
	EnvSkipVerify = "REDIS_SKIP_VERIFY"
)

const (
	DefaultPort = 6379
	DefaultDB   = 0
)

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server host. An empty host means the store is not
	// configured and the shared handle falls back to the global client.
	Host string `yaml:"host" mapstructure:"host" validate:"required"`

	// Port is the Redis server port.
	Port int `yaml:"port" mapstructure:"port" validate:"min=1,max=65535"`

	// DB is the Redis database number.
	DB int `yaml:"db" mapstructure:"db" validate:"gte=0"`

	// User is the ACL username. Empty uses the default user.
	User string `yaml:"user" mapstructure:"user"`

	// Password is the Redis server password.
	Password string `yaml:"password" mapstructure:"password"`

	// TLS enables TLS 1.2+ with Host as the server name.
	TLS bool `yaml:"tls" mapstructure:"tls"`

	// CAFile, CertFile and KeyFile are PEM files for a private CA and a
	// client certificate. Setting any of them implies TLS.
	CAFile   string `yaml:"ca_file" mapstructure:"ca_file"`
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file"`

	// SkipVerify disables server certificate verification.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`

	// PoolSize is the maximum number of socket connections.
	PoolSize int `yaml:"pool_size" mapstructure:"pool_size" validate:"gte=0"`

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int `yaml:"min_idle_conns" mapstructure:"min_idle_conns" validate:"gte=0"`

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout" validate:"gte=0"`

	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// Configured reports whether a host is set.
func (c Config) Configured() bool {
	return c.Host != ""
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Port <= 0 {
		c.Port = DefaultPort
	}
	if c.DB < 0 {
		c.DB = DefaultDB
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns <= 0 {
		c.MinIdleConns = 2
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("redis config: %w", err)
	}
	tlsCfg := c.TLSConfig()
	if err := tlsCfg.Validate(); err != nil {
		return fmt.Errorf("redis config: %w", err)
	}
	return nil
}

// TLSConfig returns the TLS settings with Host as the server name.
func (c Config) TLSConfig() security.TLSConfig {
	return security.TLSConfig{
		Enabled:    c.TLS,
		ServerName: c.Host,
		SkipVerify: c.SkipVerify,
		CAFile:     c.CAFile,
		CertFile:   c.CertFile,
		KeyFile:    c.KeyFile,
	}
}

// LoadEnvConfig reads REDIS_HOST, REDIS_PORT, REDIS_DB, REDIS_USER,
// REDIS_PASSWORD, REDIS_TLS and the REDIS_*_FILE certificate paths. Unparseable numbers read as zero and pick up
// the defaults; nothing here fails when the variables are absent.
func LoadEnvConfig() Config {
	v := viper.New()
	v.SetEnvPrefix("redis")
	for _, key := range []string{"host", "port", "db", "user", "password", "tls", "ca_file", "cert_file", "key_file", "skip_verify"} {
		_ = v.BindEnv(key)
	}
	v.SetDefault("port", DefaultPort)
	v.SetDefault("db", DefaultDB)

	cfg := Config{
		Host:     v.GetString("host"),
		Port:     v.GetInt("port"),
		DB:       v.GetInt("db"),
		User:     v.GetString("user"),
		Password: v.GetString("password"),
		TLS:      v.GetBool("tls"),

		CAFile:     v.GetString("ca_file"),
		CertFile:   v.GetString("cert_file"),
		KeyFile:    v.GetString("key_file"),
		SkipVerify: v.GetBool("skip_verify"),
	}
	cfg.ApplyDefaults()
	return cfg
}
