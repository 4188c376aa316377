package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// Anthropic calls the messages API.
type Anthropic struct {
	apiKey      string
	baseURL     string
	temperature float64
	maxTokens   int
	client      *http.Client
}

// NewAnthropic creates the Anthropic backend.
func NewAnthropic(env func(string) string, opts Options) *Anthropic {
	opts = opts.withDefaults()
	return &Anthropic{
		apiKey:      env("ANTHROPIC_API_KEY"),
		baseURL:     anthropicAPIURL,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		client:      &http.Client{Timeout: opts.Timeout},
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) RequiredCredentials() []string { return []string{"ANTHROPIC_API_KEY"} }

func (a *Anthropic) Call(ctx context.Context, prompt, model string) (string, error) {
	if a.apiKey == "" {
		return "", &authError{message: "ANTHROPIC_API_KEY is not set"}
	}
	req := anthropicRequest{
		Model:       model,
		MaxTokens:   a.maxTokens,
		Temperature: &a.temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	}
	body, err := postJSON(ctx, a.client, a.baseURL, map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicAPIVersion,
	}, req)
	if err != nil {
		return "", err
	}

	var result anthropicResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	var content strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	if content.Len() == 0 {
		return "", fmt.Errorf("empty text content in API response")
	}
	return content.String(), nil
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
