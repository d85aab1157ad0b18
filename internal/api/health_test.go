package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/speedrun/internal/api"
)

func TestLiveness_ReturnsOK(t *testing.T) {
	t.Parallel()

	h := api.NewHealthHandler(&mockProbe{healthErr: errors.New("down")}, 1, testLogger(), "test-v1")

	r := gin.New()
	r.GET("/health", h.Liveness)

	w := doRequest(r, "/health")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", body["status"])
	}

	if body["version"] != "test-v1" {
		t.Errorf("expected version 'test-v1', got %v", body["version"])
	}
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		probe      *mockProbe
		wantCode   int
		wantDB     string
		wantSchema string
	}{
		{"ready", &mockProbe{applied: 1}, http.StatusOK, "ok", "ok"},
		{"ahead of binary", &mockProbe{applied: 2}, http.StatusOK, "ok", "ok"},
		{"database down", &mockProbe{healthErr: errors.New("refused")}, http.StatusServiceUnavailable, "error", "unknown"},
		{"not migrated", &mockProbe{applied: 0}, http.StatusServiceUnavailable, "ok", "outdated"},
		{"schema unreadable", &mockProbe{schemaErr: errors.New("no table")}, http.StatusServiceUnavailable, "ok", "error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := api.NewHealthHandler(tc.probe, 1, testLogger(), "test")

			r := gin.New()
			r.GET("/ready", h.Readiness)

			w := doRequest(r, "/ready")
			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, w.Code)
			}

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}

			if body.Checks["database"] != tc.wantDB || body.Checks["schema"] != tc.wantSchema {
				t.Errorf("checks = %v, want database=%s schema=%s", body.Checks, tc.wantDB, tc.wantSchema)
			}
		})
	}
}
