package main

import (
	"context"
	"fmt"

	"github.com/kbukum/kvbridge/bootstrap"
	"github.com/kbukum/kvbridge/bridge"
	"github.com/kbukum/kvbridge/observability"
	"github.com/kbukum/kvbridge/redis"
)

// runtime wires configuration into a bootstrapped app and a bridge over
// one Redis handle.
type runtime struct {
	app     *bootstrap.App[*AppConfig]
	handle  *redis.Handle
	bridge  *bridge.Bridge
	metrics *observability.Metrics
}

func newRuntime(ctx context.Context, cfg *AppConfig, opts ...bootstrap.Option) (*runtime, error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}

	shutdown, err := observability.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("telemetry setup: %w", err)
	}
	metrics, err := observability.NewMetrics(observability.Meter())
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("telemetry metrics: %w", err)
	}

	redisCfg := cfg.Redis
	handle := redis.NewHandle(func() redis.Config { return redisCfg }, app.Logger)

	b := bridge.New(bridge.FromHandle(handle),
		bridge.WithConfig(cfg.Bridge),
		bridge.WithLogger(app.Logger),
		bridge.WithMetrics(metrics),
	)

	app.OnStop(func(ctx context.Context) error {
		return shutdown(ctx)
	})

	return &runtime{app: app, handle: handle, bridge: b, metrics: metrics}, nil
}

// runOnce runs fn as a one-shot task. The handle is not registered as a
// component, so connection problems surface from the operation itself.
func (r *runtime) runOnce(ctx context.Context, fn func(ctx context.Context, b *bridge.Bridge) error) error {
	r.app.OnStop(func(context.Context) error {
		return r.handle.Close()
	})
	return r.app.RunTask(ctx, func(ctx context.Context) error {
		return fn(ctx, r.bridge)
	})
}
