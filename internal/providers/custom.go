package providers

import (
	"context"
	"encoding/json"
	"net/http"
)

// Custom posts {model, prompt} to an arbitrary endpoint.
type Custom struct {
	apiKey string
	url    string
	client *http.Client
}

// NewCustom creates the generic backend from CUSTOM_API_KEY and
// CUSTOM_API_URL.
func NewCustom(env func(string) string, opts Options) *Custom {
	opts = opts.withDefaults()
	return &Custom{
		apiKey: env("CUSTOM_API_KEY"),
		url:    env("CUSTOM_API_URL"),
		client: &http.Client{Timeout: opts.Timeout},
	}
}

func (c *Custom) Name() string { return "custom" }

func (c *Custom) RequiredCredentials() []string {
	return []string{"CUSTOM_API_KEY", "CUSTOM_API_URL"}
}

// Call returns the "response" field of the reply, then "text", then the raw
// body when neither is a string.
func (c *Custom) Call(ctx context.Context, prompt, model string) (string, error) {
	if c.apiKey == "" || c.url == "" {
		return "", &authError{message: "CUSTOM_API_KEY and CUSTOM_API_URL must be set"}
	}
	body, err := postJSON(ctx, c.client, c.url, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}, customRequest{Model: model, Prompt: prompt})
	if err != nil {
		return "", err
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err == nil {
		for _, k := range []string{"response", "text"} {
			if s, ok := result[k].(string); ok {
				return s, nil
			}
		}
	}
	return string(body), nil
}

type customRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}
