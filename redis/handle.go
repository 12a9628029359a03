package redis

import (
	"context"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/kvbridge/component"
	apperrors "github.com/kbukum/kvbridge/errors"
	"github.com/kbukum/kvbridge/logger"
)

var (
	globalMu     sync.RWMutex
	globalClient *Client
)

// SetGlobalClient registers the client borrowed by handles whose
// configuration has no host. Passing nil clears it.
func SetGlobalClient(c *Client) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalClient = c
}

// SetGlobalGoRedis registers an application-owned go-redis client.
func SetGlobalGoRedis(rdb *goredis.Client) {
	if rdb == nil {
		SetGlobalClient(nil)
		return
	}
	SetGlobalClient(Wrap(rdb, logger.WithComponent("redis")))
}

// GlobalClient returns the registered global client, or nil.
func GlobalClient() *Client {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalClient
}

// ConfigSource supplies the configuration a Handle is built from.
type ConfigSource func() Config

// Handle resolves the store client for a process. On first use it reads
// its configuration once; with a host it builds and keeps exactly one
// client, without one it borrows the global client on every call.
type Handle struct {
	lazy   *component.Lazy
	source ConfigSource
	log    *logger.Logger

	mu     sync.RWMutex
	client *Client
	owned  bool
}

// NewHandle creates a handle that reads its configuration from source.
func NewHandle(source ConfigSource, log *logger.Logger) *Handle {
	if log == nil {
		log = logger.NewNop()
	}
	h := &Handle{source: source, log: log}
	h.lazy = component.NewLazy("redis", h.init).WithCloser(h.closeOwned)
	return h
}

var (
	sharedOnce   sync.Once
	sharedHandle *Handle
)

// Shared returns the process-wide handle, configured from REDIS_*
// environment variables.
func Shared() *Handle {
	sharedOnce.Do(func() {
		sharedHandle = NewHandle(LoadEnvConfig, logger.WithComponent("redis"))
	})
	return sharedHandle
}

func (h *Handle) init(_ context.Context) error {
	cfg := h.source()
	if !cfg.Configured() {
		h.log.Debug("No Redis host configured, using global client")
		return nil
	}

	client, err := New(cfg, h.log)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.client = client
	h.owned = true
	h.mu.Unlock()
	return nil
}

func (h *Handle) closeOwned() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	client := h.client
	h.client = nil
	if client == nil || !h.owned {
		return nil
	}
	h.owned = false
	return client.Close()
}

// Client returns the store client, or an unavailable error when neither a
// configured nor a global client exists.
func (h *Handle) Client(ctx context.Context) (*Client, error) {
	if err := h.lazy.Initialize(ctx); err != nil {
		h.log.Error("Redis client initialization failed", logger.ErrorFields("redis_init", err))
		return nil, apperrors.ServiceUnavailable("Redis").WithCause(err)
	}

	h.mu.RLock()
	client := h.client
	h.mu.RUnlock()
	if client != nil {
		return client, nil
	}
	if g := GlobalClient(); g != nil {
		return g, nil
	}
	return nil, apperrors.ServiceUnavailable("Redis")
}

// Owned reports whether the handle built its own client.
func (h *Handle) Owned() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.owned
}

// Close releases a client the handle built. A borrowed global client is
// left open. The next Client call reads the configuration again.
func (h *Handle) Close() error {
	return h.lazy.Close()
}
