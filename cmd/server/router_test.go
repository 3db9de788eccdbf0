package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/userstore/internal/config"
	"github.com/phrazzld/userstore/internal/mocks"
	"github.com/phrazzld/userstore/internal/platform/logger"
	"github.com/phrazzld/userstore/internal/platform/metrics"
	"github.com/phrazzld/userstore/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, s store.UserStore) *application {
	t.Helper()
	log, _ := logger.GetTestLogger(t)
	return &application{
		config: &config.Config{
			Server: config.ServerConfig{
				Port:           3000,
				LogLevel:       "debug",
				RequestTimeout: 5 * time.Second,
			},
			Database: config.DatabaseConfig{Type: config.DatabaseSQLite},
		},
		logger:    log,
		userStore: metrics.InstrumentStore(s, "router-test"),
	}
}

func request(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestRouterEndToEnd(t *testing.T) {
	app := newTestApp(t, mocks.NewMockUserStore())
	srv := httptest.NewServer(app.setupRouter())
	defer srv.Close()

	resp, body := request(t, srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello, World!", body)

	resp, body = request(t, srv, http.MethodPost, "/users", `{"username":"alice"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"message":"User created with username: alice"}`, body)

	resp, _ = request(t, srv, http.MethodPatch, "/users/alice", `{"age":30}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = request(t, srv, http.MethodGet, "/users/alice", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":1,"username":"alice","age":30}`, body)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	resp, _ = request(t, srv, http.MethodPut, "/users/alice", `{"age":31}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = request(t, srv, http.MethodDelete, "/users/alice", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = request(t, srv, http.MethodGet, "/users/alice", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "User not found: alice")

	resp, _ = request(t, srv, http.MethodPost, "/users/alice", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRouterHealthAndMetrics(t *testing.T) {
	s := mocks.NewMockUserStore()
	app := newTestApp(t, s)
	srv := httptest.NewServer(app.setupRouter())
	defer srv.Close()

	resp, body := request(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)

	s.PingFn = func(context.Context) error {
		return store.Backend(store.EngineSQLite, "ping", errors.New("sql: database is closed"))
	}
	resp, _ = request(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, body = request(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "userstore_http_requests_total")
	assert.Contains(t, body, `route="/users/{username}"`)
	assert.Contains(t, body, `userstore_store_operation_errors_total{backend="router-test",kind="backend",operation="ping"}`)
}

func TestRouterPercentUsernames(t *testing.T) {
	app := newTestApp(t, mocks.NewMockUserStore())
	srv := httptest.NewServer(app.setupRouter())
	defer srv.Close()

	for _, body := range []string{`{"username":"aA"}`, `{"username":"a%41"}`, `{"username":"100%"}`} {
		resp, _ := request(t, srv, http.MethodPost, "/users", body)
		require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	}

	resp, body := request(t, srv, http.MethodGet, "/users/100%25", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":3,"username":"100%","age":0}`, body)

	resp, body = request(t, srv, http.MethodGet, "/users/a%2541", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":2,"username":"a%41","age":0}`, body)

	resp, _ = request(t, srv, http.MethodPatch, "/users/a%2541", `{"age":9}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = request(t, srv, http.MethodGet, "/users/aA", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":1,"username":"aA","age":0}`, body, "neighbouring user untouched")

	resp, _ = request(t, srv, http.MethodDelete, "/users/100%25", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = request(t, srv, http.MethodGet, "/users/100%25", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
