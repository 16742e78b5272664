package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/sheetcheck/internal/config"
)

func echoRemoteAddr() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ClientIP(r)))
	})
}

// =============================================================================
// TrustedRealIP
// =============================================================================

func TestTrustedRealIP(t *testing.T) {
	handler := TrustedRealIP([]string{"10.0.0.0/8", "192.168.1.5", "not-a-cidr"})(echoRemoteAddr())

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "trusted proxy with X-Real-IP",
			remoteAddr: "10.1.2.3:5000",
			headers:    map[string]string{"X-Real-IP": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "trusted proxy with X-Forwarded-For chain",
			remoteAddr: "192.168.1.5:443",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.1, 10.1.2.3"},
			want:       "198.51.100.1",
		},
		{
			name:       "untrusted client cannot spoof",
			remoteAddr: "203.0.113.50:1234",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "203.0.113.50",
		},
		{
			name:       "invalid header keeps remote address",
			remoteAddr: "10.1.2.3:5000",
			headers:    map[string]string{"X-Real-IP": "garbage"},
			want:       "10.1.2.3",
		},
		{
			name:       "IPv4-mapped remote address",
			remoteAddr: "[::ffff:10.9.9.9]:80",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if got := rec.Body.String(); got != tt.want {
				t.Errorf("client IP = %q, want %q", got, tt.want)
			}
		})
	}
}

// =============================================================================
// APIKeyAuth
// =============================================================================

func TestAPIKeyAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name string
		cfg  config.SecurityConfig
		key  string
		want int
	}{
		{"auth disabled", config.SecurityConfig{}, "", http.StatusNoContent},
		{"missing key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, "", http.StatusUnauthorized},
		{"wrong key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, "k2", http.StatusForbidden},
		{"second key accepted", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1", "k2"}}, "k2", http.StatusNoContent},
		{"no keys configured", config.SecurityConfig{RequireAPIKey: true}, "k1", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/tables", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()

			APIKeyAuth(&tt.cfg)(ok).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// =============================================================================
// Logger
// =============================================================================

func TestResponseWriter_CapturesStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	ww.WriteHeader(http.StatusTeapot)
	ww.WriteHeader(http.StatusOK)
	ww.Write([]byte("hello"))

	if ww.status != http.StatusTeapot || rec.Code != http.StatusTeapot {
		t.Errorf("status = %d (recorded %d), want %d", ww.status, rec.Code, http.StatusTeapot)
	}
	if ww.bytes != 5 {
		t.Errorf("bytes = %d, want 5", ww.bytes)
	}
}
