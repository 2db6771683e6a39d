package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// clientOf reaches the embedded wire client of a concrete provider.
func clientOf(t *testing.T, p Provider) client {
	t.Helper()
	switch v := p.(type) {
	case *ollamaProvider:
		return v.c
	case *openAIProvider:
		return v.c
	case *geminiProvider:
		return v.c
	case *customProvider:
		return v.c
	default:
		t.Fatalf("unexpected provider type %T", p)
		return client{}
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantType string
	}{
		{"ollama", "*llm.ollamaProvider"},
		{"openai", "*llm.openAIProvider"},
		{"gemini", "*llm.geminiProvider"},
		{"custom", "*llm.customProvider"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewProvider(Config{Provider: tt.provider, Model: "test-model"})
			if err != nil {
				t.Fatalf("NewProvider(%q): %v", tt.provider, err)
			}
			if got := fmt.Sprintf("%T", p); got != tt.wantType {
				t.Errorf("NewProvider(%q) type = %s, want %s", tt.provider, got, tt.wantType)
			}
		})
	}

	if _, err := NewProvider(Config{Provider: "doesnotexist"}); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := NewProvider(Config{}); err == nil {
		t.Error("expected error for empty provider")
	}
}

func TestProviderDefaults(t *testing.T) {
	tests := []struct {
		provider  string
		wantURL   string
		wantModel string
	}{
		{"ollama", "http://localhost:11434", "test-model"},
		{"openai", "https://api.openai.com", "test-model"},
		{"gemini", "https://generativelanguage.googleapis.com/v1beta/openai", "test-model"},
		{"custom", "", "test-model"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewProvider(Config{Provider: tt.provider, Model: "test-model"})
			if err != nil {
				t.Fatalf("NewProvider(%q): %v", tt.provider, err)
			}
			c := clientOf(t, p)
			if c.cfg.BaseURL != tt.wantURL {
				t.Errorf("default BaseURL = %q, want %q", c.cfg.BaseURL, tt.wantURL)
			}
			if c.cfg.Model != tt.wantModel {
				t.Errorf("model = %q, want %q", c.cfg.Model, tt.wantModel)
			}
		})
	}
}

func TestExplicitConfigPreserved(t *testing.T) {
	for _, provider := range []string{"ollama", "openai", "gemini", "custom"} {
		t.Run(provider, func(t *testing.T) {
			p, err := NewProvider(Config{
				Provider: provider,
				Model:    "my-model",
				BaseURL:  "http://my-server:9999",
				APIKey:   "sk-test-key-123",
			})
			if err != nil {
				t.Fatalf("NewProvider(%q): %v", provider, err)
			}
			c := clientOf(t, p)
			if c.cfg.BaseURL != "http://my-server:9999" {
				t.Errorf("BaseURL = %q, not preserved", c.cfg.BaseURL)
			}
			if c.cfg.Model != "my-model" {
				t.Errorf("Model = %q, not preserved", c.cfg.Model)
			}
			if c.cfg.APIKey != "sk-test-key-123" {
				t.Errorf("APIKey = %q, not preserved", c.cfg.APIKey)
			}
		})
	}
}

func TestClientChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("auth header = %q", got)
		}
		var payload chatPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatal(err)
		}
		if payload.Model != "m" || len(payload.Messages) != 1 {
			t.Errorf("payload = %+v", payload)
		}
		fmt.Fprint(w, `{"model":"m","choices":[{"message":{"content":"คำตอบ"},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":4,"total_tokens":14}}`)
	}))
	defer srv.Close()

	c := newClient(Config{Model: "m", BaseURL: srv.URL, APIKey: "key"}, "/v1")
	resp, err := c.chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "สวัสดี"}},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Content != "คำตอบ" || resp.FinishReason != "stop" || resp.TotalTokens != 14 {
		t.Errorf("chat response = %+v", resp)
	}
}

func TestClientEmbedKeepsInputOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Reply out of order; the client must place vectors by index.
		fmt.Fprint(w, `{"data":[
			{"index":1,"embedding":[0.2]},
			{"index":0,"embedding":[0.1]},
			{"index":2,"embedding":[0.3]}]}`)
	}))
	defer srv.Close()

	c := newClient(Config{Model: "m", BaseURL: srv.URL}, "/v1")
	got, err := c.embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	want := [][]float32{{0.1}, {0.2}, {0.3}}
	for i := range want {
		if len(got[i]) != 1 || got[i][0] != want[i][0] {
			t.Errorf("embedding[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestClientRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"model":"m","choices":[{"message":{"content":"ok"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	c := newClient(Config{Model: "m", BaseURL: srv.URL}, "/v1")
	resp, err := c.chat(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "x"}}})
	if err != nil {
		t.Fatalf("chat after retry: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("content = %q", resp.Content)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestClientDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"bad model"}`)
	}))
	defer srv.Close()

	c := newClient(Config{Model: "m", BaseURL: srv.URL}, "/v1")
	_, err := c.chat(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "x"}}})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("err = %v, want 400 error", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d calls, want 1", got)
	}
}
