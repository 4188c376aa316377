package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGemini_Call(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Error("Missing API key in x-goog-api-key header")
		}
		if !strings.HasSuffix(r.URL.Path, "gemini-2.0-flash:generateContent") {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"codeSuggestions\""},{"text":":[]}"}]}}]}`))
	}))
	defer server.Close()

	g := NewGemini(envMap(map[string]string{"GEMINI_API_KEY": "test-key"}), testOpts)
	g.baseURL = server.URL
	g.client = server.Client()

	content, err := g.Call(context.Background(), "p", "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("Call error: %v", err)
	}
	if content != `{"codeSuggestions":[]}` {
		t.Errorf("content = %q", content)
	}
}

func TestGemini_MissingKey(t *testing.T) {
	g := NewGemini(envMap(nil), testOpts)
	if _, err := g.Call(context.Background(), "p", "gemini"); !IsAuthError(err) {
		t.Errorf("err = %v, want auth error", err)
	}
}

func TestGemini_CredentialsMatchKeySource(t *testing.T) {
	// Only the variable RequiredCredentials names may configure the key.
	env := envMap(map[string]string{"GOOGLE_API_KEY": "g"})
	g := NewGemini(env, testOpts)
	if g.apiKey != "" {
		t.Errorf("apiKey = %q, want empty without GEMINI_API_KEY", g.apiKey)
	}
	if missing := MissingCredentials(g, env); len(missing) != 1 || missing[0] != "GEMINI_API_KEY" {
		t.Errorf("MissingCredentials = %v, want [GEMINI_API_KEY]", missing)
	}

	env = envMap(map[string]string{"GEMINI_API_KEY": "k"})
	g = NewGemini(env, testOpts)
	if g.apiKey != "k" {
		t.Errorf("apiKey = %q, want %q", g.apiKey, "k")
	}
	if missing := MissingCredentials(g, env); len(missing) != 0 {
		t.Errorf("MissingCredentials = %v, want none", missing)
	}
}
