package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"

	apperrors "github.com/kbukum/kvbridge/errors"
	"github.com/kbukum/kvbridge/logger"
)

func withGlobalClient(t *testing.T, c *Client) {
	t.Helper()
	prev := GlobalClient()
	SetGlobalClient(c)
	t.Cleanup(func() { SetGlobalClient(prev) })
}

func TestHandleBuildsOneClient(t *testing.T) {
	mini := miniredis.RunT(t)
	var loads int32
	h := NewHandle(func() Config {
		atomic.AddInt32(&loads, 1)
		return miniConfig(t, mini)
	}, logger.NewNop())
	defer h.Close()

	var wg sync.WaitGroup
	clients := make([]*Client, 16)
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := h.Client(context.Background())
			if err != nil {
				t.Errorf("Client failed: %v", err)
				return
			}
			clients[i] = c
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(clients); i++ {
		if clients[i] != clients[0] {
			t.Fatal("expected every caller to receive the same client")
		}
	}
	if got := atomic.LoadInt32(&loads); got != 1 {
		t.Errorf("expected configuration read once, got %d", got)
	}
	if !h.Owned() {
		t.Error("expected handle to own its client")
	}
}

func TestHandleUnavailable(t *testing.T) {
	withGlobalClient(t, nil)
	h := NewHandle(func() Config { return Config{} }, nil)

	_, err := h.Client(context.Background())
	if !apperrors.IsCode(err, apperrors.ErrCodeServiceUnavailable) {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
	appErr, _ := apperrors.AsAppError(err)
	if appErr.Message != "Redis client is not available." {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestHandleBorrowsGlobalClient(t *testing.T) {
	global, _ := newTestClient(t)
	withGlobalClient(t, global)

	h := NewHandle(func() Config { return Config{} }, nil)
	c, err := h.Client(context.Background())
	if err != nil {
		t.Fatalf("Client failed: %v", err)
	}
	if c != global {
		t.Error("expected the global client")
	}
	if h.Owned() {
		t.Error("borrowed client must not be owned")
	}

	if err := h.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := global.Ping(context.Background()); err != nil {
		t.Errorf("global client closed by handle: %v", err)
	}
}

func TestHandleGlobalRegisteredAfterFirstUse(t *testing.T) {
	withGlobalClient(t, nil)
	h := NewHandle(func() Config { return Config{} }, nil)

	if _, err := h.Client(context.Background()); err == nil {
		t.Fatal("expected unavailable before registration")
	}

	global, _ := newTestClient(t)
	SetGlobalClient(global)

	c, err := h.Client(context.Background())
	if err != nil {
		t.Fatalf("Client failed after registration: %v", err)
	}
	if c != global {
		t.Error("expected the late-registered global client")
	}
}

func TestHandleConfiguredWinsOverGlobal(t *testing.T) {
	global, _ := newTestClient(t)
	withGlobalClient(t, global)

	mini := miniredis.RunT(t)
	h := NewHandle(func() Config { return miniConfig(t, mini) }, nil)
	defer h.Close()

	c, err := h.Client(context.Background())
	if err != nil {
		t.Fatalf("Client failed: %v", err)
	}
	if c == global {
		t.Error("expected the configured client, not the global one")
	}
}

func TestHandleInvalidConfig(t *testing.T) {
	h := NewHandle(func() Config { return Config{Host: "localhost", Port: 99999} }, nil)

	_, err := h.Client(context.Background())
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeServiceUnavailable {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
	if appErr.Cause == nil {
		t.Error("expected the configuration error as cause")
	}
}

func TestHandleCloseReleasesOwnedClient(t *testing.T) {
	mini := miniredis.RunT(t)
	h := NewHandle(func() Config { return miniConfig(t, mini) }, nil)

	first, err := h.Client(context.Background())
	if err != nil {
		t.Fatalf("Client failed: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := first.Ping(context.Background()); err == nil {
		t.Error("expected closed client to fail")
	}

	second, err := h.Client(context.Background())
	if err != nil {
		t.Fatalf("Client after Close failed: %v", err)
	}
	defer h.Close()
	if second == first {
		t.Error("expected a fresh client after Close")
	}
}

func TestSharedIsSingleton(t *testing.T) {
	if Shared() != Shared() {
		t.Error("expected Shared to return the same handle")
	}
}
