package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/kvbridge/logger"
)

// Client wraps a go-redis client with kvbridge logging. It exposes the four
// primitives the bridge issues (GET, SET, RPUSH, PING) plus what the
// lifecycle needs.
type Client struct {
	rdb    *goredis.Client
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

// New creates a Redis client. It does not dial; the first command does.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}

	opts := &goredis.Options{
		Addr:         cfg.Addr(),
		Username:     cfg.User,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		// Abandoned requests (a ping that lost its race) must stop reading.
		ContextTimeoutEnabled: true,
	}
	tlsCfg := cfg.TLSConfig()
	if opts.TLSConfig, err = tlsCfg.Build(); err != nil {
		return nil, fmt.Errorf("redis tls: %w", err)
	}

	rdb := goredis.NewClient(opts)

	log.Info("Redis client created", map[string]interface{}{
		"addr":      cfg.Addr(),
		"db":        cfg.DB,
		"user":      cfg.User,
		"password":  maskSecret(cfg.Password),
		"tls":       opts.TLSConfig != nil,
		"pool_size": cfg.PoolSize,
	})

	return &Client{rdb: rdb, log: log, cfg: cfg}, nil
}

// Wrap adapts an existing go-redis client, typically one owned by the host
// application and registered with SetGlobalClient.
func Wrap(rdb *goredis.Client, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	opts := rdb.Options()
	cfg := Config{DB: opts.DB, PoolSize: opts.PoolSize, User: opts.Username, TLS: opts.TLSConfig != nil}
	if host, port, err := splitAddr(opts.Addr); err == nil {
		cfg.Host, cfg.Port = host, port
	}
	return &Client{rdb: rdb, log: log, cfg: cfg}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Ping sends PING and returns the server reply. When ctx carries a
// deadline the socket timeouts follow it, so a ping may wait longer than
// the configured ReadTimeout.
func (c *Client) Ping(ctx context.Context) (string, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return c.rdb.Ping(ctx).Result()
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return "", context.DeadlineExceeded
	}
	return c.rdb.WithTimeout(remaining).Ping(ctx).Result()
}

// Lookup runs GET. A missing key reports found=false with a nil error.
func (c *Client) Lookup(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores value under key. An expiration of 0 means no expiry.
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// RPush appends values to the list at key.
func (c *Client) RPush(ctx context.Context, key string, values ...interface{}) error {
	return c.rdb.RPush(ctx, key, values...).Err()
}

// Close closes the connection pool. Safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.log.Info("Closing Redis connection", map[string]interface{}{"addr": c.cfg.Addr()})
	c.closed = true
	return c.rdb.Close()
}

// Unwrap returns the underlying go-redis client for advanced operations.
func (c *Client) Unwrap() *goredis.Client {
	return c.rdb
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in %q: %w", addr, err)
	}
	return host, port, nil
}
