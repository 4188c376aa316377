package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// Gemini calls Google's Gemini API through the genai SDK.
type Gemini struct {
	apiKey      string
	baseURL     string
	temperature float64
	client      *http.Client

	mu  sync.Mutex
	cli *genai.Client
}

// NewGemini creates the Google backend from GEMINI_API_KEY.
func NewGemini(env func(string) string, opts Options) *Gemini {
	opts = opts.withDefaults()
	return &Gemini{
		apiKey:      env("GEMINI_API_KEY"),
		temperature: opts.Temperature,
		client:      &http.Client{Timeout: opts.Timeout},
	}
}

func (g *Gemini) Name() string { return "google" }

func (g *Gemini) RequiredCredentials() []string { return []string{"GEMINI_API_KEY"} }

func (g *Gemini) genaiClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cli != nil {
		return g.cli, nil
	}
	cfg := &genai.ClientConfig{
		APIKey:     g.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.client,
	}
	if g.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	g.cli = cli
	return cli, nil
}

func (g *Gemini) Call(ctx context.Context, prompt, model string) (string, error) {
	if g.apiKey == "" {
		return "", &authError{message: "GEMINI_API_KEY is not set"}
	}
	cli, err := g.genaiClient(ctx)
	if err != nil {
		return "", err
	}

	resp, err := cli.Models.GenerateContent(ctx, model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{Temperature: genai.Ptr(float32(g.temperature))},
	)
	if err != nil {
		return "", mapGenaiError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		reason := ""
		if len(resp.Candidates) > 0 {
			reason = string(resp.Candidates[0].FinishReason)
		}
		return "", fmt.Errorf("no content in response (finish reason %q)", reason)
	}

	var content strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			content.WriteString(part.Text)
		}
	}
	return content.String(), nil
}

func mapGenaiError(err error) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	default:
		return err
	}
	if code == http.StatusOK {
		return err
	}
	return statusError(code, []byte(err.Error()))
}
