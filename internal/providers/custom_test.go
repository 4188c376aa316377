package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCustom_Call(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"response field", `{"response":"r","text":"t"}`, "r"},
		{"text field", `{"text":"t"}`, "t"},
		{"raw body", `{"output":"o"}`, `{"output":"o"}`},
		{"not json", `plain words`, `plain words`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer ck" {
					t.Error("wrong Authorization header")
				}
				var req customRequest
				json.NewDecoder(r.Body).Decode(&req)
				if req.Model != "m" || req.Prompt != "p" {
					t.Errorf("request = %+v", req)
				}
				w.Write([]byte(tt.reply))
			}))
			defer server.Close()

			c := NewCustom(envMap(map[string]string{"CUSTOM_API_KEY": "ck", "CUSTOM_API_URL": server.URL}), testOpts)
			got, err := c.Call(context.Background(), "p", "m")
			if err != nil {
				t.Fatalf("Call error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Call = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCustom_MissingConfig(t *testing.T) {
	c := NewCustom(envMap(map[string]string{"CUSTOM_API_KEY": "ck"}), testOpts)
	if _, err := c.Call(context.Background(), "p", "m"); !IsAuthError(err) {
		t.Errorf("err = %v, want auth error", err)
	}
}
