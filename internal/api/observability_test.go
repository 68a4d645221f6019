package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/WanessaDiniztech/Haxball/internal/config"
	"github.com/WanessaDiniztech/Haxball/internal/metrics"
)

func TestDebugHandlerMetrics(t *testing.T) {
	metrics.RecordGoal("blue")

	ts := httptest.NewServer(NewDebugHandler(config.DefaultObservability()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `game_goals_total{side="blue"}`) {
		t.Error("Expected goal counter in metrics output")
	}
}

func TestDebugHandlerBasicAuth(t *testing.T) {
	cfg := config.DefaultObservability()
	cfg.BasicAuthUser = "admin"
	cfg.BasicAuthPass = "secret"
	h := NewDebugHandler(cfg)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without credentials, got %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/health", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with credentials, got %d", rec.Code)
	}
}

func TestIsLoopback(t *testing.T) {
	tests := map[string]bool{
		"127.0.0.1:6060": true,
		"localhost:6060": true,
		"[::1]:6060":     true,
		"0.0.0.0:6060":   false,
		":6060":          false,
		"10.1.2.3:6060":  false,
		"garbage":        false,
	}
	for addr, want := range tests {
		if got := isLoopback(addr); got != want {
			t.Errorf("isLoopback(%q) = %v, want %v", addr, got, want)
		}
	}
}
