package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/kvbridge/component"
	"github.com/kbukum/kvbridge/config"
	"github.com/kbukum/kvbridge/logger"
)

type testConfig struct {
	config.ServiceConfig
}

func newTestConfig(name, version string) *testConfig {
	return &testConfig{ServiceConfig: config.ServiceConfig{Name: name, Version: version}}
}

// mockComponent records its lifecycle into a shared journal.
type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	journal  *[]string
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(context.Context) error {
	m.started = true
	m.record("start " + m.name)
	return m.startErr
}

func (m *mockComponent) Stop(context.Context) error {
	m.stopped = true
	m.record("stop " + m.name)
	return m.stopErr
}

func (m *mockComponent) Health(context.Context) component.Health {
	if m.health.Name == "" {
		return component.Health{Name: m.name, Status: component.StatusHealthy}
	}
	return m.health
}

func (m *mockComponent) record(step string) {
	if m.journal != nil {
		*m.journal = append(*m.journal, step)
	}
}

func newQuietApp(t *testing.T) *App[*testConfig] {
	t.Helper()
	app, err := NewApp(newTestConfig("kvbridge", "1.0.0"), WithoutSummary(), WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newQuietApp(t)
	if app.Name != "kvbridge" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %s %s", app.Name, app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("expected defaults applied, got environment %q", app.Cfg.Environment)
	}
	if app.Components == nil || app.Summary == nil || app.Logger == nil {
		t.Fatal("expected registry, summary and logger")
	}
	if app.opts.gracefulTimeout != DefaultGracefulTimeout {
		t.Errorf("expected default graceful timeout, got %v", app.opts.gracefulTimeout)
	}
}

func TestNewAppRejectsInvalidConfig(t *testing.T) {
	// empty name fails validation
	if _, err := NewApp(newTestConfig("", "1.0.0")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewAppInitializesGlobalLogger(t *testing.T) {
	app, err := NewApp(newTestConfig("kvbridge", "1.0.0"), WithoutSummary())
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Logger != logger.GetGlobalLogger() {
		t.Error("expected the initialized global logger")
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app, _ := NewApp(newTestConfig("kvbridge", "1"), WithGracefulTimeout(3*time.Second), WithLogger(logger.NewNop()))
	if app.opts.gracefulTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", app.opts.gracefulTimeout)
	}
	app, _ = NewApp(newTestConfig("kvbridge", "1"), WithGracefulTimeout(-1), WithLogger(logger.NewNop()))
	if app.opts.gracefulTimeout != DefaultGracefulTimeout {
		t.Errorf("expected default for a negative timeout, got %v", app.opts.gracefulTimeout)
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	app := newQuietApp(t)
	if err := app.RegisterComponent(&mockComponent{name: "redis"}); err != nil {
		t.Fatalf("RegisterComponent failed: %v", err)
	}
	if app.Components.Get("redis") == nil {
		t.Fatal("expected redis to be registered")
	}
	if err := app.RegisterComponent(&mockComponent{name: "redis"}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestRunTaskLifecycleOrder(t *testing.T) {
	app := newQuietApp(t)
	var journal []string
	note := func(step string) Hook {
		return func(context.Context) error {
			journal = append(journal, step)
			return nil
		}
	}
	app.RegisterComponent(&mockComponent{name: "redis", journal: &journal})
	app.RegisterComponent(&mockComponent{name: "http-server", journal: &journal})
	app.OnStart(note("on start"))
	app.OnReady(note("on ready"))
	app.OnStop(note("on stop"), note("on stop 2"))

	err := app.RunTask(context.Background(), func(context.Context) error {
		journal = append(journal, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	want := []string{
		"start redis", "start http-server", "on start", "on ready", "task",
		"on stop", "on stop 2", "stop http-server", "stop redis",
	}
	if strings.Join(journal, "|") != strings.Join(want, "|") {
		t.Errorf("lifecycle order\n got %v\nwant %v", journal, want)
	}
}

func TestRunTaskErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := func(context.Context) error { return boom }

	tests := []struct {
		name    string
		setup   func(app *App[*testConfig])
		task    func(context.Context) error
		wantErr string
		runs    bool
	}{
		{
			name:    "task error",
			task:    failing,
			wantErr: "boom",
			runs:    true,
		},
		{
			name:    "start hook",
			setup:   func(app *App[*testConfig]) { app.OnStart(failing) },
			wantErr: "start hook 0: boom",
		},
		{
			name:    "ready hook",
			setup:   func(app *App[*testConfig]) { app.OnReady(failing) },
			wantErr: "ready hook 0: boom",
		},
		{
			name:    "stop hook",
			setup:   func(app *App[*testConfig]) { app.OnStop(failing) },
			wantErr: "stop hook 0: boom",
			runs:    true,
		},
		{
			name: "component start",
			setup: func(app *App[*testConfig]) {
				app.RegisterComponent(&mockComponent{name: "redis", startErr: boom})
			},
			wantErr: "failed to start redis",
		},
		{
			name: "component stop",
			setup: func(app *App[*testConfig]) {
				app.RegisterComponent(&mockComponent{name: "redis", stopErr: boom})
			},
			wantErr: "failed to stop redis",
			runs:    true,
		},
		{
			name: "task error wins over stop error",
			setup: func(app *App[*testConfig]) {
				app.RegisterComponent(&mockComponent{name: "redis", stopErr: errors.New("stop failed")})
			},
			task:    failing,
			wantErr: "boom",
			runs:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newQuietApp(t)
			if tc.setup != nil {
				tc.setup(app)
			}
			ran := false
			err := app.RunTask(context.Background(), func(ctx context.Context) error {
				ran = true
				if tc.task != nil {
					return tc.task(ctx)
				}
				return nil
			})
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
			if ran != tc.runs {
				t.Errorf("task ran = %v, want %v", ran, tc.runs)
			}
		})
	}
}

func TestRunTaskStartFailureStopsStartedComponents(t *testing.T) {
	app := newQuietApp(t)
	first := &mockComponent{name: "redis"}
	app.RegisterComponent(first)
	app.RegisterComponent(&mockComponent{name: "http-server", startErr: errors.New("bind: address in use")})

	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected start error")
	}
	if !first.stopped {
		t.Error("expected the started component to be stopped")
	}
}

func TestRunTaskCancellation(t *testing.T) {
	app := newQuietApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := app.RunTask(ctx, func(ctx context.Context) error {
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	app := newQuietApp(t)
	comp := &mockComponent{name: "redis"}
	app.RegisterComponent(comp)

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error {
		cancel()
		return nil
	})

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !comp.stopped {
		t.Error("expected component to be stopped")
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name    string
		health  []component.Health
		wantErr string
	}{
		{name: "empty"},
		{name: "healthy", health: []component.Health{{Name: "redis", Status: component.StatusHealthy}}},
		{
			name:    "unhealthy",
			health:  []component.Health{{Name: "redis", Status: component.StatusUnhealthy, Message: "connection refused"}},
			wantErr: "redis=unhealthy (connection refused)",
		},
		{
			name:    "degraded",
			health:  []component.Health{{Name: "svc", Status: component.StatusDegraded}},
			wantErr: "svc=degraded",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newQuietApp(t)
			for _, h := range tc.health {
				app.RegisterComponent(&mockComponent{name: h.Name, health: h})
			}
			err := app.ReadyCheck(context.Background())
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestUnhealthyComponentDoesNotBlockStartup(t *testing.T) {
	app := newQuietApp(t)
	app.RegisterComponent(&mockComponent{
		name:   "redis",
		health: component.Health{Name: "redis", Status: component.StatusUnhealthy, Message: "not configured"},
	})
	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Errorf("expected ready check to only warn, got %v", err)
	}
}

type describedComponent struct {
	mockComponent
	desc component.Description
}

func (d *describedComponent) Describe() component.Description { return d.desc }

func TestSummaryRender(t *testing.T) {
	reg := component.NewRegistry()
	reg.Register(&describedComponent{
		mockComponent: mockComponent{name: "redis", health: component.Health{Name: "redis", Status: component.StatusHealthy}},
		desc:          component.Description{Name: "Redis", Type: "store", Details: "localhost:6379 db=0"},
	})
	reg.Register(&describedComponent{
		mockComponent: mockComponent{name: "http-server", health: component.Health{Name: "http-server", Status: component.StatusUnhealthy, Message: "not started"}},
		desc:          component.Description{Name: "HTTP Server", Type: "server", Details: "127.0.0.1:8080", Port: 8080},
	})

	s := NewSummary("kvbridge", "1.2.0")
	s.SetStartupDuration(1500 * time.Millisecond)
	s.Collect(context.Background(), reg)

	var out bytes.Buffer
	s.Render(&out)
	text := out.String()

	for _, want := range []string{
		"kvbridge 1.2.0 started in 1.50s",
		"Redis [store] localhost:6379 db=0",
		"HTTP Server [server] 127.0.0.1:8080\n",
		"http-server: unhealthy (not started)",
		"Some components have issues (1/2 healthy)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
	if healthy, total := s.Healthy(); healthy != 1 || total != 2 {
		t.Errorf("Healthy() = %d/%d, want 1/2", healthy, total)
	}
}

func TestSummaryRenderEmpty(t *testing.T) {
	s := NewSummary("kvbridge", "dev")
	s.Collect(context.Background(), nil)

	var out bytes.Buffer
	s.Render(&out)
	if !strings.Contains(out.String(), "no components registered") {
		t.Errorf("unexpected summary: %s", out.String())
	}
}

func TestStartupWritesSummary(t *testing.T) {
	cfg := newTestConfig("kvbridge", "1.0")
	var out bytes.Buffer
	app, _ := NewApp(cfg, WithSummaryOutput(&out), WithLogger(logger.NewNop()))
	app.RegisterComponent(&mockComponent{name: "redis", health: component.Health{Name: "redis", Status: component.StatusHealthy}})

	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if !strings.Contains(out.String(), "All components healthy (1/1)") {
		t.Errorf("unexpected summary: %s", out.String())
	}
}
