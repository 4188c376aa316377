package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI calls the chat completions API.
type OpenAI struct {
	apiKey      string
	baseURL     string
	temperature float64
	maxTokens   int
	client      *http.Client
}

// NewOpenAI creates the OpenAI backend. BUGBENCH_OPENAI_BASE_URL overrides
// the endpoint for compatible gateways.
func NewOpenAI(env func(string) string, opts Options) *OpenAI {
	opts = opts.withDefaults()
	baseURL := env("BUGBENCH_OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &OpenAI{
		apiKey:      env("OPENAI_API_KEY"),
		baseURL:     baseURL,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		client:      &http.Client{Timeout: opts.Timeout},
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) RequiredCredentials() []string { return []string{"OPENAI_API_KEY"} }

func (o *OpenAI) Call(ctx context.Context, prompt, model string) (string, error) {
	if o.apiKey == "" {
		return "", &authError{message: "OPENAI_API_KEY is not set"}
	}
	return chatCompletion(ctx, o.client, o.baseURL, o.apiKey, openaiRequest{
		Model:       model,
		Messages:    []openaiMessage{{Role: "user", Content: prompt}},
		MaxTokens:   o.maxTokens,
		Temperature: &o.temperature,
	})
}

// chatCompletion performs one OpenAI-style request. apiKey may be empty for
// local servers.
func chatCompletion(ctx context.Context, client *http.Client, url, apiKey string, req openaiRequest) (string, error) {
	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}
	body, err := postJSON(ctx, client, url, headers, req)
	if err != nil {
		return "", err
	}

	var result openaiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	if result.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty text content in API response")
	}
	return result.Choices[0].Message.Content, nil
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}
