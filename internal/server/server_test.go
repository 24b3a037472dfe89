package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophtext/internal/server/config"
	"github.com/iudanet/gophtext/internal/server/handlers"
	"github.com/iudanet/gophtext/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	return config.Config{
		Addr:             "127.0.0.1:0",
		DBPath:           ":memory:",
		LogFormat:        "text",
		SubscriberBuffer: 16,
		RateLimit:        2,
		RateWindow:       time.Minute,
		ShutdownTimeout:  time.Second,
	}
}

func TestServer_Routes(t *testing.T) {
	s, err := New(context.Background(), testConfig(), "test", setupTestLogger())
	require.NoError(t, err)
	defer s.Close()

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	var health handlers.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "test", health.Version)

	value := "x"
	body, err := json.Marshal(api.SubmitRequest{
		ClientID: "alice",
		Op:       api.Operation{Type: "insert", Value: &value, Originator: "alice"},
	})
	require.NoError(t, err)

	// лимит записей: 2 запроса на документ с одного адреса
	codes := make([]int, 0, 3)
	for range 3 {
		resp, err := http.Post(srv.URL+"/api/v1/ot/notes/ops", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		_ = resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	resp, err = http.Get(srv.URL + "/api/v1/ot/notes")
	require.NoError(t, err)
	var snapshot api.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
	_ = resp.Body.Close()
	assert.Equal(t, api.Snapshot{Text: "xx", Version: 2}, snapshot)

	history, err := s.store.LoadHistory(context.Background(), "notes")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s, err := New(context.Background(), testConfig(), "test", setupTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_InvalidStorage(t *testing.T) {
	cfg := testConfig()
	cfg.DBPath = "/nonexistent/dir/gophtext.db"

	_, err := New(context.Background(), cfg, "test", setupTestLogger())
	require.Error(t, err)
}
