package http

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/juju/clock/testclock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/record-service/internal/api/http/handlers"
	"github.com/spec-kit/record-service/internal/auth"
	"github.com/spec-kit/record-service/internal/events"
	"github.com/spec-kit/record-service/internal/observability"
	"github.com/spec-kit/record-service/internal/persistence"
	"github.com/spec-kit/record-service/internal/repository"
	"github.com/spec-kit/record-service/internal/service"
	"github.com/spec-kit/record-service/internal/stream"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	userInterval  = 2 * time.Second
	priceInterval = 3 * time.Second
)

type testServer struct {
	app      *fiber.App
	clock    *testclock.Clock
	registry *stream.Registry
	tokens   *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	clk := testclock.NewClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	promRegistry := prometheus.NewRegistry()
	require.NoError(t, promRegistry.Register(metrics))

	registry := stream.NewRegistry(clk, logger, metrics)
	t.Cleanup(registry.CloseAll)
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager("test-secret", 5, clk)
	sse := handlers.SSEConfig{Clock: clk, Logger: logger}

	users := service.NewUserService(service.UserDependencies{
		UserRepo:      repository.NewUserRepository(clk, repository.SeedUsers()...),
		Registry:      registry,
		WatchInterval: userInterval,
		Dispatcher:    dispatcher,
		Clock:         clk,
		Logger:        logger,
	})
	products := service.NewProductService(service.ProductDependencies{
		ProductRepo:   repository.NewProductRepository(clk, repository.SeedProducts()...),
		Registry:      registry,
		WatchInterval: priceInterval,
		Dispatcher:    dispatcher,
		Clock:         clk,
		Logger:        logger,
	})

	var (
		pg  *persistence.Postgres
		rdb *persistence.Redis
	)
	app := NewApp("record-service-test")
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:   handlers.NewHealthHandler("record-service", "test", map[string]handlers.Pinger{"postgres": pg, "redis": rdb}),
		Users:    handlers.NewUsersHandler(users, sse),
		Products: handlers.NewProductsHandler(products, sse),
		Auth:     handlers.NewAuthHandler(tokens),
		Identity: auth.NewIdentityMiddleware(tokens),
		Metrics:  observability.Handler(promRegistry),
	})

	return &testServer{app: app, clock: clk, registry: registry, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data: %v", body)
	return d
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func bearer(t *testing.T, tokens *auth.TokenManager, callerID string) map[string]string {
	t.Helper()
	token, _, err := tokens.GenerateToken(callerID)
	require.NoError(t, err)
	return map[string]string{fiber.HeaderAuthorization: "Bearer " + token}
}

func TestListProducts(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/products?category=electronics&page_size=2", nil, nil)
	require.Equal(t, http.StatusOK, status)
	page := data(t, body)
	assert.EqualValues(t, 3, page["total_count"])
	assert.EqualValues(t, 1, page["page"])
	assert.EqualValues(t, 2, page["page_size"])
	assert.Len(t, page["products"], 2)

	status, body = s.do(t, http.MethodGet, "/products?min_price=100&max_price=249.99", nil, nil)
	require.Equal(t, http.StatusOK, status)
	page = data(t, body)
	assert.EqualValues(t, 2, page["total_count"])

	status, body = s.do(t, http.MethodGet, "/products?page=9", nil, nil)
	require.Equal(t, http.StatusOK, status)
	page = data(t, body)
	assert.EqualValues(t, 5, page["total_count"])
	assert.Empty(t, page["products"])
}

func TestListProductsRejectsMalformedQuery(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/products?min_price=cheap", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ARGUMENT", errorCode(body))
}

func TestGetMissingRecords(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/products/404", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = s.do(t, http.MethodGet, "/users/404", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = s.do(t, http.MethodGet, "/nowhere", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestCreateUserNeedsToken(t *testing.T) {
	s := newTestServer(t)
	req := map[string]string{"name": "Eve", "email": "eve@example.com"}

	status, body := s.do(t, http.MethodPost, "/users", req, map[string]string{auth.CallerIDHeader: "1"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(body))

	status, _ = s.do(t, http.MethodPost, "/users", req, map[string]string{fiber.HeaderAuthorization: "Bearer junk"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = s.do(t, http.MethodPost, "/users", req, bearer(t, s.tokens, "1"))
	require.Equal(t, http.StatusCreated, status)
	user := data(t, body)
	assert.Equal(t, "Eve", user["name"])
	assert.Equal(t, "USER", user["role"])
	assert.NotEmpty(t, user["id"])

	status, body = s.do(t, http.MethodPost, "/users", req, bearer(t, s.tokens, "1"))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_EXISTS", errorCode(body))
}

func TestIssuedTokenCreatesUser(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/auth/token", map[string]string{"caller_id": "2"}, nil)
	require.Equal(t, http.StatusCreated, status)
	token, _ := data(t, body)["token"].(string)
	require.NotEmpty(t, token)

	status, _ = s.do(t, http.MethodPost, "/users",
		map[string]string{"name": "Zed", "email": "zed@example.com", "role": "moderator"},
		map[string]string{fiber.HeaderAuthorization: "Bearer " + token})
	assert.Equal(t, http.StatusCreated, status)
}

func TestCreateProductNeedsCallerID(t *testing.T) {
	s := newTestServer(t)
	req := map[string]any{"name": "Desk", "price": 120.5, "category": "home", "stock": 3}

	status, body := s.do(t, http.MethodPost, "/products", req, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "PERMISSION_DENIED", errorCode(body))

	status, body = s.do(t, http.MethodPost, "/products", req, map[string]string{auth.CallerIDHeader: "1"})
	require.Equal(t, http.StatusCreated, status)
	product := data(t, body)
	assert.Equal(t, 120.5, product["price"])
	assert.Equal(t, true, product["available"])

	status, body = s.do(t, http.MethodPost, "/products", map[string]any{"name": "Free", "price": 0}, bearer(t, s.tokens, "1"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ARGUMENT", errorCode(body))
}

func TestUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPatch, "/products/3", map[string]any{"stock": 0}, nil)
	require.Equal(t, http.StatusOK, status)
	product := data(t, body)
	assert.Equal(t, false, product["available"])
	assert.Equal(t, "Coffee Maker", product["name"])

	status, body = s.do(t, http.MethodPatch, "/users/2", map[string]any{"role": "superuser"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ARGUMENT", errorCode(body))

	status, body = s.do(t, http.MethodDelete, "/users/1", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User with ID 1 successfully deleted", data(t, body)["message"])

	status, _ = s.do(t, http.MethodDelete, "/users/1", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListUsersByRole(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/users?role=moderator", nil, nil)
	require.Equal(t, http.StatusOK, status)
	page := data(t, body)
	assert.EqualValues(t, 1, page["total_count"])

	status, body = s.do(t, http.MethodGet, "/users?role=nobody", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, data(t, body)["total_count"])
}

func TestWatchPricesRejectsUnknownProducts(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/products/watch?ids=nope,also-nope", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ARGUMENT", errorCode(body))
	assert.Zero(t, s.registry.Active())
}

func TestWatchUsersStreamsEvents(t *testing.T) {
	s := newTestServer(t)

	type result struct {
		resp *http.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/users/watch?role=admin", nil), -1)
		done <- result{resp, err}
	}()

	require.NoError(t, s.clock.WaitAdvance(userInterval, time.Second, 1))
	// The timer is re-armed only after the first event was handed to the writer.
	require.NoError(t, s.clock.WaitAdvance(userInterval, time.Second, 1))
	s.registry.CloseAll()

	var res result
	select {
	case res = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end")
	}
	require.NoError(t, res.err)
	defer res.resp.Body.Close()

	assert.Equal(t, http.StatusOK, res.resp.StatusCode)
	assert.Equal(t, "text/event-stream", res.resp.Header.Get(fiber.HeaderContentType))

	raw, err := io.ReadAll(res.resp.Body)
	require.NoError(t, err)
	frames := strings.Split(strings.TrimSpace(string(raw)), "\n\n")
	require.NotEmpty(t, frames)
	assert.Contains(t, frames[0], "event: user\n")

	var dataLine string
	for _, line := range strings.Split(frames[0], "\n") {
		if strings.HasPrefix(line, "data: ") {
			dataLine = strings.TrimPrefix(line, "data: ")
		}
	}
	var user map[string]any
	require.NoError(t, json.Unmarshal([]byte(dataLine), &user))
	assert.Equal(t, "John Doe", user["name"])
	assert.Equal(t, "ADMIN", user["role"])
	assert.Zero(t, s.registry.Active())
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/health/live", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.do(t, http.MethodGet, "/health/ready", nil, nil)
	require.Equal(t, http.StatusOK, status)
	deps, _ := body["dependencies"].(map[string]any)
	assert.Equal(t, "disabled", deps["postgres"])
	assert.Equal(t, "disabled", deps["redis"])

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "record_service_http_requests_total")
}
