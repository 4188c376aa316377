package providers

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestParseModelSpec(t *testing.T) {
	tests := []struct {
		spec, provider, model string
	}{
		{"openai:gpt-4o", "openai", "gpt-4o"},
		{"ollama:codellama:7b", "ollama", "codellama:7b"},
		{"Anthropic:claude-sonnet-4", "anthropic", "claude-sonnet-4"},
		{"gpt-4o-mini", "openai", "gpt-4o-mini"},
		{"claude-3-haiku", "anthropic", "claude-3-haiku"},
		{"gemini-2.0-flash", "google", "gemini-2.0-flash"},
		{"llama3", "ollama", "llama3"},
		{"mistral-large", "ollama", "mistral-large"},
		{"something", "openai", "something"},
	}
	for _, tt := range tests {
		p, m := ParseModelSpec(tt.spec)
		if p != tt.provider || m != tt.model {
			t.Errorf("ParseModelSpec(%q) = (%q, %q), want (%q, %q)", tt.spec, p, m, tt.provider, tt.model)
		}
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry(envMap(nil), Options{})
	want := []string{"anthropic", "custom", "google", "ollama", "openai"}
	if got := reg.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}
	for _, name := range want {
		b, ok := reg.Get(name)
		if !ok {
			t.Fatalf("Get(%q) not found", name)
		}
		if b.Name() != name {
			t.Errorf("backend %q reports Name() = %q", name, b.Name())
		}
	}
	if _, ok := reg.Get("bedrock"); ok {
		t.Error("unexpected backend bedrock")
	}
}

func TestMissingCredentials(t *testing.T) {
	c := NewCustom(envMap(nil), testOpts)
	got := MissingCredentials(c, envMap(map[string]string{"CUSTOM_API_URL": "http://x"}))
	if !reflect.DeepEqual(got, []string{"CUSTOM_API_KEY"}) {
		t.Errorf("MissingCredentials = %v", got)
	}
	if got := MissingCredentials(NewOllama(envMap(nil), testOpts), envMap(nil)); len(got) != 0 {
		t.Errorf("MissingCredentials(ollama) = %v, want none", got)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.Temperature != 0.1 || o.MaxTokens != defaultMaxTokens || o.Timeout != defaultTimeout {
		t.Errorf("withDefaults = %+v", o)
	}
}

func TestIsAuthError(t *testing.T) {
	if IsAuthError(nil) {
		t.Error("nil should not be auth error")
	}
	if IsAuthError(&rateLimitError{}) {
		t.Error("rateLimitError should not be auth error")
	}
	if !IsAuthError(&authError{message: "test"}) {
		t.Error("authError should be auth error")
	}
	wrapped := errors.Join(context.Canceled, &authError{message: "x"})
	if !IsAuthError(wrapped) {
		t.Error("wrapped authError should be auth error")
	}
}

func TestErrorMessages(t *testing.T) {
	rl := &rateLimitError{}
	if rl.Error() != "rate limited" {
		t.Errorf("rateLimitError.Error() = %q", rl.Error())
	}

	se := &serverError{statusCode: 500, body: "oops"}
	if se.Error() != "server error: oops" {
		t.Errorf("serverError.Error() = %q", se.Error())
	}

	ae := &authError{message: "bad key"}
	if ae.Error() != "authentication error: bad key" {
		t.Errorf("authError.Error() = %q", ae.Error())
	}
}

func TestStatusError(t *testing.T) {
	if !IsRateLimit(statusError(429, nil)) {
		t.Error("429 should be rate limit")
	}
	if !IsAuthError(statusError(401, nil)) || !IsAuthError(statusError(403, nil)) {
		t.Error("401/403 should be auth errors")
	}
	if err := statusError(400, []byte("bad")); err.Error() != "API error (status 400): bad" {
		t.Errorf("400 error = %q", err.Error())
	}
}
