package httpserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, checks map[string]Check) *Server {
	t.Helper()
	api := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	s, err := New(Config{
		ListenAddr:               "127.0.0.1:0",
		AdminToken:               "s3cret",
		Log:                      slog.New(slog.NewTextHandler(io.Discard, nil)),
		GracefulShutdownDuration: time.Second,
	}, api, checks)
	require.NoError(t, err)
	return s
}

func do(s *Server, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestOperationalRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/livez", nil).Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/readyz", nil).Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/metrics", nil).Code)
	assert.Equal(t, http.StatusTeapot, do(s, http.MethodGet, "/api/anything", nil).Code)
}

func TestDrainRequiresAdminToken(t *testing.T) {
	s := newTestServer(t, nil)
	admin := http.Header{"X-Admin-Token": []string{"s3cret"}}

	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodPost, "/drain", nil).Code)

	rr := do(s, http.MethodPost, "/drain", admin)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"draining"}`, rr.Body.String())
	assert.Equal(t, http.StatusServiceUnavailable, do(s, http.MethodGet, "/readyz", nil).Code)
	assert.JSONEq(t, `{"status":"already draining"}`, do(s, http.MethodPost, "/drain", admin).Body.String())

	assert.JSONEq(t, `{"status":"ready"}`, do(s, http.MethodPost, "/undrain", admin).Body.String())
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/readyz", nil).Code)
}

func TestReadinessRunsChecks(t *testing.T) {
	s := newTestServer(t, map[string]Check{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	})
	assert.Equal(t, http.StatusServiceUnavailable, do(s, http.MethodGet, "/readyz", nil).Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/livez", nil).Code)
}

func TestServeStopsOnCancel(t *testing.T) {
	s := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/livez")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewRequiresHandler(t *testing.T) {
	_, err := New(Config{}, nil, nil)
	assert.Error(t, err)
}
