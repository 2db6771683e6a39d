package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	h := authMiddleware("secret", okHandler())

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"valid key", "/search", "Bearer secret", http.StatusOK},
		{"wrong key", "/search", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "/search", "", http.StatusUnauthorized},
		{"basic scheme rejected", "/search", "Basic secret", http.StatusUnauthorized},
		{"health skips auth", "/health", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}

	// Empty key disables auth.
	open := authMiddleware("", okHandler())
	w := httptest.NewRecorder()
	open.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
	if w.Code != http.StatusOK {
		t.Errorf("disabled auth status = %d, want 200", w.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	h := corsMiddleware("https://a.example, https://b.example", okHandler())

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	req.Header.Set("Origin", "https://b.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://b.example" {
		t.Errorf("allow-origin = %q, want the matched origin", got)
	}

	// Unlisted origins get no CORS headers.
	req = httptest.NewRequest(http.MethodGet, "/search", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin for unlisted origin = %q, want empty", got)
	}

	// Preflight short-circuits with 204.
	req = httptest.NewRequest(http.MethodOptions, "/search", nil)
	req.Header.Set("Origin", "https://a.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}

	// Wildcard allows any origin.
	any := corsMiddleware("*", okHandler())
	req = httptest.NewRequest(http.MethodGet, "/search", nil)
	req.Header.Set("Origin", "https://c.example")
	w = httptest.NewRecorder()
	any.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://c.example" {
		t.Errorf("wildcard allow-origin = %q", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/search", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestLogMiddlewareRequestID(t *testing.T) {
	h := logMiddleware(okHandler())

	// A fresh id is assigned when the client sends none.
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}

	// A client-supplied id is echoed unchanged.
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("request id = %q, want req-42", got)
	}
}
