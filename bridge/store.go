package bridge

import (
	"context"
	"time"

	apperrors "github.com/kbukum/kvbridge/errors"
	"github.com/kbukum/kvbridge/redis"
)

// Store is the set of store primitives the bridge issues. *redis.Client
// implements it; tests substitute fakes to inject failures.
type Store interface {
	// Lookup runs GET. A missing key reports found=false and no error.
	Lookup(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	RPush(ctx context.Context, key string, values ...interface{}) error
	Ping(ctx context.Context) (string, error)
}

var _ Store = (*redis.Client)(nil)

// StoreSource yields the store for one operation. It returns an
// unavailable error when no store exists.
type StoreSource func(ctx context.Context) (Store, error)

// FromHandle sources the store from a redis.Handle, usually redis.Shared().
func FromHandle(h *redis.Handle) StoreSource {
	return func(ctx context.Context) (Store, error) {
		if h == nil {
			return nil, apperrors.ServiceUnavailable("Redis")
		}
		client, err := h.Client(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// FromStore always yields s. A nil s is reported as unavailable.
func FromStore(s Store) StoreSource {
	return func(context.Context) (Store, error) {
		if s == nil {
			return nil, apperrors.ServiceUnavailable("Redis")
		}
		return s, nil
	}
}
