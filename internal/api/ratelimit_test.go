package api

import (
	"net/http/httptest"
	"testing"
)

func TestIPRateLimiterPerIP(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 2})

	if !rl.Allow("1.1.1.1") || !rl.Allow("1.1.1.1") {
		t.Fatal("Burst should be allowed")
	}
	if rl.Allow("1.1.1.1") {
		t.Error("Third request should be limited")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("Other IPs have their own budget")
	}

	stats := rl.GetStats()
	if stats["allowed"] != 3 || stats["rejected"] != 1 {
		t.Errorf("Unexpected stats: %v", stats)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "10.0.0.1:5555", "10.0.0.1"},
		{"forwarded", map[string]string{"X-Forwarded-For": "9.9.9.9, 10.0.0.1"}, "10.0.0.1:5555", "9.9.9.9"},
		{"real ip", map[string]string{"X-Real-IP": " 8.8.8.8 "}, "10.0.0.1:5555", "8.8.8.8"},
		{"no port", nil, "10.0.0.2", "10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestConnLimiter(t *testing.T) {
	cl := NewConnLimiter(2)

	if !cl.Acquire("ip") || !cl.Acquire("ip") {
		t.Fatal("Two connections should be allowed")
	}
	if cl.Acquire("ip") {
		t.Error("Third connection should be rejected")
	}

	cl.Release("ip")
	if cl.Count("ip") != 1 {
		t.Errorf("Expected 1 connection, got %d", cl.Count("ip"))
	}
	if !cl.Acquire("ip") {
		t.Error("Released slot should be reusable")
	}

	cl.Release("ip")
	cl.Release("ip")
	if _, ok := cl.conns["ip"]; ok {
		t.Error("Empty entries should be removed")
	}
}

func TestOriginAllowed(t *testing.T) {
	allowed := append(append([]string{}, DefaultOrigins...), "https://*.example.com", "https://play.haxball.dev")

	tests := []struct {
		name   string
		host   string
		origin string
		want   bool
	}{
		{"no origin", "game.local", "", true},
		{"same host", "game.local:5000", "http://game.local:5000", true},
		{"localhost any port", "game.local", "http://localhost:3000", true},
		{"exact", "game.local", "https://play.haxball.dev", true},
		{"wildcard subdomain", "game.local", "https://eu.example.com", true},
		{"wildcard needs subdomain", "game.local", "https://example.com", false},
		{"foreign", "game.local", "https://evil.test", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/ws", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := OriginAllowed(r, allowed); got != tt.want {
				t.Errorf("OriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}
