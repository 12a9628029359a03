package redis

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/kvbridge/component"
)

func TestComponentLifecycle(t *testing.T) {
	mini := miniredis.RunT(t)
	comp := NewComponent(NewHandle(func() Config { return miniConfig(t, mini) }, nil), nil)
	ctx := context.Background()

	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", h.Status, h.Message)
	}

	desc := comp.Describe()
	if desc.Type != "redis" || !strings.Contains(desc.Details, mini.Addr()) {
		t.Errorf("unexpected description %+v", desc)
	}

	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestComponentStartUnconfigured(t *testing.T) {
	withGlobalClient(t, nil)
	comp := NewComponent(NewHandle(func() Config { return Config{} }, nil), nil)

	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("expected unconfigured start to succeed, got %v", err)
	}
	h := comp.Health(context.Background())
	if h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", h.Status)
	}
	if comp.Describe().Details != "not configured" {
		t.Errorf("unexpected description %+v", comp.Describe())
	}
}

func TestComponentStartUnreachable(t *testing.T) {
	mini := miniredis.RunT(t)
	cfg := miniConfig(t, mini)
	mini.Close()

	comp := NewComponent(NewHandle(func() Config { return cfg }, nil), nil)
	defer comp.Stop(context.Background())
	if err := comp.Start(context.Background()); err == nil {
		t.Error("expected start to fail when the server is down")
	}
}

func TestComponentHealthAfterServerLoss(t *testing.T) {
	mini := miniredis.RunT(t)
	comp := NewComponent(NewHandle(func() Config { return miniConfig(t, mini) }, nil), nil)
	ctx := context.Background()
	defer comp.Stop(ctx)

	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	mini.Close()

	h := comp.Health(ctx)
	if h.Status != component.StatusUnhealthy || !strings.Contains(h.Message, "ping failed") {
		t.Errorf("expected unhealthy ping failure, got %+v", h)
	}
}
