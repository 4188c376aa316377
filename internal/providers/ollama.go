package providers

import (
	"context"
	"net/http"
	"strings"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama talks to a local OpenAI-compatible server such as Ollama or
// LM Studio. No credential is required.
type Ollama struct {
	apiKey      string
	baseURL     string
	temperature float64
	maxTokens   int
	client      *http.Client
}

// NewOllama creates the local backend from OLLAMA_HOST (or OLLAMA_URL).
func NewOllama(env func(string) string, opts Options) *Ollama {
	opts = opts.withDefaults()
	baseURL := env("OLLAMA_HOST")
	if baseURL == "" {
		baseURL = env("OLLAMA_URL")
	}
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	// Normalize URL: strip trailing /, /v1, /v1/chat/completions
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1/chat/completions")
	baseURL = strings.TrimSuffix(baseURL, "/v1")

	return &Ollama{
		// Optional, for servers that require it (e.g., LM Studio)
		apiKey:      env("BUGBENCH_OLLAMA_API_KEY"),
		baseURL:     baseURL + "/v1/chat/completions",
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		client:      &http.Client{Timeout: opts.Timeout},
	}
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) RequiredCredentials() []string { return nil }

func (o *Ollama) Call(ctx context.Context, prompt, model string) (string, error) {
	return chatCompletion(ctx, o.client, o.baseURL, o.apiKey, openaiRequest{
		Model:       model,
		Messages:    []openaiMessage{{Role: "user", Content: prompt}},
		MaxTokens:   o.maxTokens,
		Temperature: &o.temperature,
	})
}
