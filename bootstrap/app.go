package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/kvbridge/component"
	"github.com/kbukum/kvbridge/logger"
)

// App drives one kvbridge process. C is the config type; any struct
// embedding config.ServiceConfig qualifies.
//
// Startup starts the registered components in order, then runs the OnStart
// hooks, the ready check and the OnReady hooks. Shutdown runs the OnStop
// hooks and stops the components in reverse.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.RegisterComponent(redis.NewComponent(handle, app.Logger))
//	err = app.Run(ctx)
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	opts    appOptions
	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults to cfg, validates it and sets up logging. Without
// WithLogger the global logger is initialized from the logging section.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()

	o := appOptions{gracefulTimeout: DefaultGracefulTimeout, summaryOut: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		logger.Init(&base.Logging)
		o.logger = logger.GetGlobalLogger()
	}

	return &App[C]{
		Name:    base.Name,
		Version: base.Version,
		Cfg:     cfg,
		Components: component.NewRegistry(
			component.WithRegistryLogger(o.logger),
			component.WithStopTimeout(o.gracefulTimeout),
		),
		Logger:  o.logger,
		Summary: NewSummary(base.Name, base.Version),
		opts:    o,
	}, nil
}

// RegisterComponent adds c to the registry; registration order is start order.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck returns an error naming every component that is not healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var bad []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		entry := fmt.Sprintf("%s=%s", h.Name, h.Status)
		if h.Message != "" {
			entry += " (" + h.Message + ")"
		}
		bad = append(bad, entry)
	}
	if len(bad) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(bad, ", "))
	}
	return nil
}

// Run starts the app and blocks until SIGINT, SIGTERM or ctx cancellation,
// then shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	return a.RunTask(ctx, func(ctx context.Context) error {
		a.Logger.Info("Application ready, waiting for shutdown signal")
		<-ctx.Done()
		return nil
	})
}

// RunTask starts the app, runs task and shuts down. SIGINT and SIGTERM
// cancel the task's context. The task's error wins over a shutdown error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		a.abortStartup()
		return err
	}

	taskCtx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	taskErr := task(taskCtx)
	if taskCtx.Err() != nil && ctx.Err() == nil {
		a.Logger.Info("Received shutdown signal")
	}
	stopSignals()

	stopErr := a.shutdown()
	if taskErr != nil {
		return taskErr
	}
	return stopErr
}

func (a *App[C]) startup(ctx context.Context) error {
	began := time.Now()
	a.Logger.Debug("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := runHooks(ctx, "start", a.onStart); err != nil {
		return err
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.ErrorFields("ready", err))
	}
	if err := runHooks(ctx, "ready", a.onReady); err != nil {
		return err
	}

	a.Summary.SetStartupDuration(time.Since(began))
	if !a.opts.quiet {
		a.Summary.Collect(ctx, a.Components)
		a.Summary.Render(a.opts.summaryOut)
	}
	return nil
}

// abortStartup releases the components that did start.
func (a *App[C]) abortStartup() {
	ctx, cancel := context.WithTimeout(context.Background(), a.opts.gracefulTimeout)
	defer cancel()
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Cleanup after failed startup", logger.ErrorFields("stop", err))
	}
}

func (a *App[C]) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.opts.gracefulTimeout)
	defer cancel()

	hookErr := runHooks(ctx, "stop", a.onStop)
	if hookErr != nil {
		a.Logger.Error("Stop hook failed", logger.ErrorFields("stop", hookErr))
	}
	stopErr := a.Components.StopAll(ctx)
	if stopErr != nil {
		a.Logger.Error("Shutdown completed with errors", logger.ErrorFields("stop", stopErr))
	}

	a.Logger.Debug("Application shutdown complete")
	if hookErr != nil {
		return hookErr
	}
	return stopErr
}
