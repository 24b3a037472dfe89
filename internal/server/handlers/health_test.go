package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		checks       map[string]Pinger
		wantChecks   map[string]string
		name         string
		wantStatus   string
		wantHTTPCode int
	}{
		{
			name:         "no checks",
			wantStatus:   "ok",
			wantHTTPCode: http.StatusOK,
		},
		{
			name: "all checks pass",
			checks: map[string]Pinger{
				"sqlite": PingFunc(func(context.Context) error { return nil }),
			},
			wantStatus:   "ok",
			wantHTTPCode: http.StatusOK,
			wantChecks:   map[string]string{"sqlite": "ok"},
		},
		{
			name: "redis down",
			checks: map[string]Pinger{
				"sqlite": PingFunc(func(context.Context) error { return nil }),
				"redis":  PingFunc(func(context.Context) error { return errors.New("connection refused") }),
			},
			wantStatus:   "degraded",
			wantHTTPCode: http.StatusServiceUnavailable,
			wantChecks:   map[string]string{"sqlite": "ok", "redis": "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(setupTestLogger(), "dev", tt.checks)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			w := httptest.NewRecorder()

			handler.Health(w, req)

			resp := w.Result()
			defer func() {
				err := resp.Body.Close()
				assert.NoError(t, err)
			}()

			assert.Equal(t, tt.wantHTTPCode, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var healthResp HealthResponse
			err := json.NewDecoder(resp.Body).Decode(&healthResp)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, healthResp.Status)
			assert.Equal(t, "dev", healthResp.Version)
			assert.Equal(t, tt.wantChecks, healthResp.Checks)
		})
	}
}
