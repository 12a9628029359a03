package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/kvbridge/component"
	"github.com/kbukum/kvbridge/testutil"
)

func TestComponentLifecycle(t *testing.T) {
	comp := NewComponent()
	ctx := context.Background()

	if comp.Handle() != nil {
		t.Error("Handle() should be nil before Start")
	}
	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}

	testutil.T(t).Setup(comp)

	client, err := comp.Handle().Client(ctx)
	if err != nil {
		t.Fatalf("Client failed: %v", err)
	}
	if reply, err := client.Ping(ctx); err != nil || reply != "PONG" {
		t.Errorf("Ping = %q, %v", reply, err)
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("Health Status = %q, want %q", h.Status, component.StatusHealthy)
	}
	if comp.Config().Addr() != comp.Server().Addr() {
		t.Errorf("config addr %q does not match server %q", comp.Config().Addr(), comp.Server().Addr())
	}
}

func TestComponentDoubleStart(t *testing.T) {
	comp := NewComponent()
	testutil.T(t).Setup(comp)
	if err := comp.Start(context.Background()); err == nil {
		t.Error("expected error on second Start")
	}
}

func TestComponentReset(t *testing.T) {
	comp := NewComponent()
	h := testutil.T(t)
	h.Setup(comp)

	comp.Server().Set("k", "v")
	h.Reset(comp)
	if comp.Server().Exists("k") {
		t.Error("expected key flushed by Reset")
	}
}

func TestComponentSnapshotRestore(t *testing.T) {
	comp := NewComponent()
	h := testutil.T(t)
	h.Setup(comp)
	mini := comp.Server()

	mini.Set("a", "1")
	mini.Push("logs", "x", "y")
	snap := h.Snapshot(comp)

	mini.Set("c", "3")
	mini.Del("a")
	mini.Push("logs", "z")

	h.Restore(comp, snap)

	if got, _ := mini.Get("a"); got != "1" {
		t.Errorf("key 'a' = %q, want %q", got, "1")
	}
	if mini.Exists("c") {
		t.Error("key 'c' should not exist after Restore")
	}
	list, _ := mini.List("logs")
	if len(list) != 2 || list[0] != "x" || list[1] != "y" {
		t.Errorf("list 'logs' = %v, want [x y]", list)
	}
}

func TestComponentRestoreRejectsForeignSnapshot(t *testing.T) {
	comp := NewComponent()
	testutil.T(t).Setup(comp)
	if err := comp.Restore(context.Background(), map[string]string{}); err == nil {
		t.Error("expected error for foreign snapshot type")
	}
}
