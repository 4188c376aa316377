package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropic_Call(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("Missing x-api-key header")
		}
		if r.Header.Get("anthropic-version") != anthropicAPIVersion {
			t.Error("Missing anthropic-version header")
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.MaxTokens != defaultMaxTokens {
			t.Errorf("max_tokens = %d, want %d", req.MaxTokens, defaultMaxTokens)
		}
		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicBlock{{Type: "text", Text: "part one "}, {Type: "tool_use"}, {Type: "text", Text: "part two"}},
		})
	}))
	defer server.Close()

	a := NewAnthropic(envMap(map[string]string{"ANTHROPIC_API_KEY": "test-key"}), testOpts)
	a.client = &http.Client{
		Transport: &rewriteTransport{
			base:    server.Client().Transport,
			baseURL: server.URL,
		},
	}

	content, err := a.Call(context.Background(), "p", "claude-sonnet-4")
	if err != nil {
		t.Fatalf("Call error: %v", err)
	}
	if content != "part one part two" {
		t.Errorf("content = %q", content)
	}
}

func TestAnthropic_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"forbidden"}`))
	}))
	defer server.Close()

	a := NewAnthropic(envMap(map[string]string{"ANTHROPIC_API_KEY": "k"}), testOpts)
	a.baseURL = server.URL
	a.client = server.Client()

	_, err := a.Call(context.Background(), "p", "claude")
	if !IsAuthError(err) {
		t.Errorf("err = %v, want auth error", err)
	}
}

func TestAnthropic_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	a := NewAnthropic(envMap(map[string]string{"ANTHROPIC_API_KEY": "k"}), testOpts)
	a.baseURL = server.URL
	a.client = server.Client()

	if _, err := a.Call(context.Background(), "p", "claude"); err == nil {
		t.Error("expected error for empty content")
	}
}
