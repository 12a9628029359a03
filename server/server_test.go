package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/kvbridge/bridge"
	"github.com/kbukum/kvbridge/component"
	apperrors "github.com/kbukum/kvbridge/errors"
	"github.com/kbukum/kvbridge/logger"
	"github.com/kbukum/kvbridge/redis"
	redistest "github.com/kbukum/kvbridge/redis/testutil"
	"github.com/kbukum/kvbridge/server"
	"github.com/kbukum/kvbridge/server/endpoint"
	"github.com/kbukum/kvbridge/testutil"
)

// stubStore fails or hangs on demand.
type stubStore struct {
	err  error
	hang bool
}

func (s stubStore) Lookup(context.Context, string) (string, bool, error) { return "", false, s.err }
func (s stubStore) Set(context.Context, string, interface{}, time.Duration) error {
	return s.err
}
func (s stubStore) RPush(context.Context, string, ...interface{}) error { return s.err }
func (s stubStore) Ping(ctx context.Context) (string, error) {
	if s.hang {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if s.err != nil {
		return "", s.err
	}
	return "PONG", nil
}

func newServer(b *bridge.Bridge, checker endpoint.HealthChecker) *server.Server {
	cfg := server.Config{Host: "127.0.0.1", MaxBodyBytes: 1024}
	cfg.ApplyDefaults()
	s := server.New(cfg, logger.NewNop())
	s.ApplyMiddleware(nil)
	s.RegisterDefaultEndpoints("kvbridge", "test", checker)
	server.NewBridgeHandler(b).Register(s.Engine())
	return s
}

func newMiniServer(t *testing.T) (*server.Server, *redistest.Component) {
	t.Helper()
	store := redistest.NewComponent()
	testutil.T(t).Setup(store)

	b := bridge.New(bridge.FromHandle(store.Handle()), bridge.WithLogger(logger.NewNop()))
	rc := redis.NewComponent(store.Handle(), logger.NewNop())
	checker := func(ctx context.Context) []component.Health {
		return []component.Health{rc.Health(ctx)}
	}
	return newServer(b, checker), store
}

func do(s *server.Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rr)
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok, rr.Body.String())
	return errBody["code"].(string)
}

func TestInsertThenQuery(t *testing.T) {
	s, _ := newMiniServer(t)

	rr := do(s, http.MethodPost, "/v1/insert",
		`{"key":"user:{{ id }}","data":{"name":"{{ name }}","n":3},"vars":{"id":7,"name":"ada"}}`)
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	rr = do(s, http.MethodPost, "/v1/query", `{"key":"user:7"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"name": "ada", "n": float64(3)}, decode(t, rr)["data"])
}

func TestQueryMissReturnsNullData(t *testing.T) {
	s, _ := newMiniServer(t)

	rr := do(s, http.MethodPost, "/v1/query", `{"key":"missing"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Contains(t, body, "data")
	assert.Nil(t, body["data"])
}

func TestPingEndpoint(t *testing.T) {
	s, _ := newMiniServer(t)

	rr := do(s, http.MethodPost, "/v1/ping", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "PONG", decode(t, rr)["data"])
}

func TestLogInsertEndpoint(t *testing.T) {
	s, store := newMiniServer(t)

	rr := do(s, http.MethodPost, "/v1/log-insert",
		`{"key":"logs","message":"hello {{ who }}","log_level":"info","vars":{"who":"world"}}`)
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	list, err := store.Server().List("logs")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0], `"msg":"hello world"`)
}

func TestErrorStatusMapping(t *testing.T) {
	storeErr := errors.New("ERR something broke")
	tests := []struct {
		name   string
		source bridge.StoreSource
		config bridge.Config
		path   string
		body   string
		status int
		code   apperrors.ErrorCode
	}{
		{"invalid key", bridge.FromStore(stubStore{}), bridge.Config{}, "/v1/query", `{"key":""}`, http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
		{"invalid insert", bridge.FromStore(stubStore{}), bridge.Config{}, "/v1/insert", `{"key":"k"}`, http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
		{"unavailable", bridge.FromStore(nil), bridge.Config{}, "/v1/query", `{"key":"k"}`, http.StatusServiceUnavailable, apperrors.ErrCodeServiceUnavailable},
		{"timeout", bridge.FromStore(stubStore{hang: true}), bridge.Config{}, "/v1/ping", `{"timeout":20}`, http.StatusGatewayTimeout, apperrors.ErrCodeTimeout},
		{"store error", bridge.FromStore(stubStore{err: storeErr}), bridge.Config{}, "/v1/query", `{"key":"k"}`, http.StatusBadGateway, apperrors.ErrCodeStore},
		{"surfaced write error", bridge.FromStore(stubStore{err: storeErr}), bridge.Config{SurfaceWriteErrors: true}, "/v1/insert", `{"key":"k","data":1}`, http.StatusBadGateway, apperrors.ErrCodeStore},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := bridge.New(tc.source, bridge.WithLogger(logger.NewNop()), bridge.WithConfig(tc.config))
			s := newServer(b, nil)

			rr := do(s, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
			assert.Equal(t, string(tc.code), errorCode(t, rr))
		})
	}
}

func TestSwallowedWriteErrorIsNoContent(t *testing.T) {
	b := bridge.New(bridge.FromStore(stubStore{err: errors.New("READONLY")}), bridge.WithLogger(logger.NewNop()))
	s := newServer(b, nil)

	rr := do(s, http.MethodPost, "/v1/insert", `{"key":"k","data":1}`)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestBadRequestBodies(t *testing.T) {
	b := bridge.New(bridge.FromStore(stubStore{}), bridge.WithLogger(logger.NewNop()))
	s := newServer(b, nil)

	rr := do(s, http.MethodPost, "/v1/query", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, string(apperrors.ErrCodeInvalidFormat), errorCode(t, rr))

	rr = do(s, http.MethodPost, "/v1/query", `{"key":"k","vars":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, string(apperrors.ErrCodeInvalidFormat), errorCode(t, rr))

	rr = do(s, http.MethodPost, "/v1/insert", `{"key":"k","data":"`+strings.Repeat("x", 2048)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	b := bridge.New(bridge.FromStore(stubStore{}), bridge.WithLogger(logger.NewNop()))
	s := newServer(b, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/ping", http.NoBody)
	req.Header.Set("X-Request-Id", "req-42")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, "req-42", rr.Header().Get("X-Request-Id"))

	rr = do(s, http.MethodPost, "/v1/ping", "")
	assert.Len(t, rr.Header().Get("X-Request-Id"), 36)
}

func TestHealthReflectsStore(t *testing.T) {
	s, store := newMiniServer(t)

	rr := do(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decode(t, rr)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "kvbridge", body["service"])

	rr = do(s, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	store.Server().Close()

	rr = do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "unhealthy", decode(t, rr)["status"])

	rr = do(s, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = do(s, http.MethodGet, "/livez", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestInfoEndpoint(t *testing.T) {
	s := newServer(bridge.New(nil, bridge.WithLogger(logger.NewNop())), nil)

	rr := do(s, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "kvbridge", body["service"])
	assert.NotEmpty(t, body["version"])
}

func TestRecoveryAnswers500(t *testing.T) {
	s := newServer(bridge.New(nil, bridge.WithLogger(logger.NewNop())), nil)
	s.Engine().GET("/boom", func(*gin.Context) { panic("boom") })

	rr := do(s, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, string(apperrors.ErrCodeInternal), errorCode(t, rr))
}

func TestCORSPreflight(t *testing.T) {
	s := newServer(bridge.New(nil, bridge.WithLogger(logger.NewNop())), nil)

	req := httptest.NewRequest(http.MethodOptions, "/v1/query", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerStartStop(t *testing.T) {
	cfg := server.Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	s := server.New(cfg, logger.NewNop())
	comp := server.NewComponent(s)
	ctx := context.Background()

	assert.Equal(t, component.StatusUnhealthy, comp.Health(ctx).Status)
	require.NoError(t, comp.Start(ctx))
	assert.Equal(t, component.StatusHealthy, comp.Health(ctx).Status)
	assert.NotEqual(t, "127.0.0.1:0", s.Addr())
	assert.Equal(t, s.Addr(), comp.Describe().Details)
	require.NoError(t, comp.Stop(ctx))
}

func TestConfigValidate(t *testing.T) {
	cfg := server.Config{}
	cfg.ApplyDefaults()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.NoError(t, cfg.Validate())

	cfg.Port = 70000
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
}
