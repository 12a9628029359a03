package bridge

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/kbukum/kvbridge/errors"
	"github.com/kbukum/kvbridge/logger"
	"github.com/kbukum/kvbridge/observability"
	"github.com/kbukum/kvbridge/resolve"
)

// Operation names, used for spans, metrics and log fields.
const (
	OpQuery     = "query"
	OpPing      = "ping"
	OpInsert    = "insert"
	OpLogInsert = "log_insert"
)

const attrWriteErrorSwallowed = "kvbridge.write_error_swallowed"

// Bridge exposes four operations over one shared store: Query, Ping,
// Insert and LogInsert. Each resolves its options, checks that required
// values are present, issues exactly one store command and returns.
// A Bridge is safe for concurrent use.
type Bridge struct {
	source  StoreSource
	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics
}

// New creates a Bridge that obtains its store from source.
func New(source StoreSource, opts ...Option) *Bridge {
	b := &Bridge{source: source}
	for _, opt := range opts {
		opt(b)
	}
	b.cfg.ApplyDefaults()
	if b.log == nil {
		b.log = logger.GetGlobalLogger()
	}
	b.log = b.log.WithComponent("bridge")
	return b
}

// Config returns the effective configuration.
func (b *Bridge) Config() Config {
	return b.cfg
}

func (b *Bridge) store(ctx context.Context) (Store, error) {
	if b.source == nil {
		return nil, apperrors.ServiceUnavailable("Redis")
	}
	s, err := b.source(ctx)
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.ServiceUnavailable("Redis").WithCause(err)
	}
	if s == nil {
		return nil, apperrors.ServiceUnavailable("Redis")
	}
	return s, nil
}

func (b *Bridge) logFailure(ctx context.Context, msg, op string, err error) {
	b.log.WithContext(ctx).Error(msg, logger.ErrorFields(op, err))
}

// Query reads the value stored under the resolved key. A missing key
// returns nil. JSON text is decoded (numbers as float64); any other text
// is returned as a string. Every failure is logged and returned.
func (b *Bridge) Query(ctx context.Context, res resolve.Resolver, opts Options) (result any, err error) {
	ctx, op := observability.StartOperation(ctx, b.metrics, OpQuery)
	defer func() {
		if err != nil {
			b.logFailure(ctx, "Redis query failed", OpQuery, err)
		}
		op.End(ctx, err)
	}()
	res = resolve.OrIdentity(res)

	store, err := b.store(ctx)
	if err != nil {
		return nil, err
	}

	key := res.Resolve(opts[FieldKey])
	if !resolve.Truthy(key) {
		return nil, apperrors.InvalidInput(FieldKey, "Invalid key provided.")
	}
	k := keyString(key)
	observability.SetSpanAttribute(ctx, observability.AttrKey, k)

	raw, found, err := store.Lookup(ctx, k)
	if err != nil {
		return nil, apperrors.StoreFailure("get", err)
	}
	observability.SetSpanAttribute(ctx, observability.AttrHit, found)
	if !found {
		return nil, nil
	}
	return decodeValue(raw), nil
}

type pingResult struct {
	reply string
	err   error
}

// Ping sends PING and waits at most the resolved timeout, in milliseconds
// when numeric and DefaultPingTimeout when absent or falsy. The reply
// ("PONG") is returned when it arrives first; otherwise Ping fails with a
// TIMEOUT error and the outstanding request is cancelled.
func (b *Bridge) Ping(ctx context.Context, res resolve.Resolver, opts Options) (reply string, err error) {
	ctx, op := observability.StartOperation(ctx, b.metrics, OpPing)
	defer func() { op.End(ctx, err) }()
	res = resolve.OrIdentity(res)

	timeout := b.cfg.PingTimeout
	if raw := res.Resolve(opts[FieldTimeout]); resolve.Truthy(raw) {
		d, perr := parseDuration(raw, time.Millisecond)
		if perr != nil {
			return "", apperrors.InvalidInput(FieldTimeout, "Invalid timeout provided.").WithCause(perr)
		}
		timeout = d
	}

	store, err := b.store(ctx)
	if err != nil {
		return "", err
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan pingResult, 1)
	go func() {
		r, perr := store.Ping(pingCtx)
		done <- pingResult{reply: r, err: perr}
	}()

	deadline, _ := pingCtx.Deadline()
	// the socket deadline can fire a moment before the context timer
	timedOut := func() bool {
		if ctx.Err() != nil {
			return false
		}
		return errors.Is(pingCtx.Err(), context.DeadlineExceeded) || !time.Now().Before(deadline)
	}

	select {
	case r := <-done:
		if r.err != nil {
			if timedOut() {
				return "", apperrors.Timeout("Redis ping")
			}
			return "", apperrors.StoreFailure("ping", r.err)
		}
		return r.reply, nil
	case <-pingCtx.Done():
		if timedOut() {
			b.log.WithContext(ctx).Warn("Redis ping timed out", logger.Fields(
				logger.FieldOperation, OpPing,
				logger.FieldDuration, timeout.Milliseconds(),
			))
			return "", apperrors.Timeout("Redis ping")
		}
		return "", ctx.Err()
	}
}

// Insert JSON-encodes the resolved data and stores it under the resolved
// key with no expiry, or with the optional ttl (seconds when numeric).
// Store failures are logged and, unless SurfaceWriteErrors is set,
// swallowed.
func (b *Bridge) Insert(ctx context.Context, res resolve.Resolver, opts Options) (err error) {
	ctx, op := observability.StartOperation(ctx, b.metrics, OpInsert)
	defer func() { op.End(ctx, err) }()
	res = resolve.OrIdentity(res)

	store, err := b.store(ctx)
	if err != nil {
		b.logFailure(ctx, "Redis insert failed", OpInsert, err)
		return err
	}

	key := res.Resolve(opts[FieldKey])
	data := res.Resolve(opts[FieldData])
	if !resolve.Truthy(key) || !resolve.Truthy(data) {
		return apperrors.InvalidInput(FieldKey, "Invalid key or data provided.")
	}

	var ttl time.Duration
	if raw := res.Resolve(opts[FieldTTL]); resolve.Truthy(raw) {
		if ttl, err = parseDuration(raw, time.Second); err != nil {
			return apperrors.InvalidInput(FieldTTL, "Invalid ttl provided.").WithCause(err)
		}
	}

	payload, err := encodeJSON(data)
	if err != nil {
		return apperrors.InvalidInput(FieldData, "Data is not JSON serializable.").WithCause(err)
	}

	k := keyString(key)
	observability.SetSpanAttribute(ctx, observability.AttrKey, k)

	if serr := store.Set(ctx, k, payload, ttl); serr != nil {
		return b.writeFailure(ctx, "Error setting JSON data", OpInsert, apperrors.StoreFailure("set", serr))
	}
	return nil
}

// LogInsert builds a LogRecord from the resolved options and appends its
// JSON text to the list named by the key option. The key is used
// literally unless ResolveLogKey is set and is not checked for presence;
// the store decides whether it is acceptable. Store failures are logged and,
// unless SurfaceWriteErrors is set, swallowed.
func (b *Bridge) LogInsert(ctx context.Context, res resolve.Resolver, opts Options) (err error) {
	ctx, op := observability.StartOperation(ctx, b.metrics, OpLogInsert)
	defer func() { op.End(ctx, err) }()
	res = resolve.OrIdentity(res)

	store, err := b.store(ctx)
	if err != nil {
		b.logFailure(ctx, "Redis log insert failed", OpLogInsert, err)
		return err
	}

	key := opts[FieldKey]
	if b.cfg.ResolveLogKey {
		key = res.Resolve(key)
	}

	record := NewLogRecord(res, opts)
	payload, err := record.Encode()
	if err != nil {
		return apperrors.InvalidInput(FieldContext, "Log record is not JSON serializable.").WithCause(err)
	}

	k := keyString(key)
	observability.SetSpanAttribute(ctx, observability.AttrKey, k)

	if serr := store.RPush(ctx, k, payload); serr != nil {
		return b.writeFailure(ctx, "Error pushing data to Redis list", OpLogInsert, apperrors.StoreFailure("rpush", serr))
	}
	return nil
}

// writeFailure logs a store-side write failure and returns it only when
// the bridge is configured to surface write errors.
func (b *Bridge) writeFailure(ctx context.Context, msg, op string, err error) error {
	b.logFailure(ctx, msg, op, err)
	if b.cfg.SurfaceWriteErrors {
		return err
	}
	observability.SetSpanAttribute(ctx, attrWriteErrorSwallowed, true)
	return nil
}
