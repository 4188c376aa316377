package providers

import (
	"context"
	"sort"
	"strings"
	"time"
)

const (
	defaultTimeout     = 120 * time.Second
	defaultTemperature = 0.1
	defaultMaxTokens   = 4096
)

// Backend is a model vendor that turns a prompt into free text.
type Backend interface {
	Name() string
	Call(ctx context.Context, prompt, model string) (string, error)
	// RequiredCredentials lists the environment variables that must be set
	// before Call can succeed.
	RequiredCredentials() []string
}

// Options configures every backend in a registry.
type Options struct {
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Temperature == 0 {
		o.Temperature = defaultTemperature
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	return o
}

// Registry maps provider names to backends.
type Registry map[string]Backend

// NewRegistry builds the standard backends. env supplies credentials and
// endpoint overrides; pass os.Getenv in production.
func NewRegistry(env func(string) string, opts Options) Registry {
	opts = opts.withDefaults()
	return Registry{
		"openai":    NewOpenAI(env, opts),
		"anthropic": NewAnthropic(env, opts),
		"google":    NewGemini(env, opts),
		"ollama":    NewOllama(env, opts),
		"custom":    NewCustom(env, opts),
	}
}

// Get returns the backend registered under name.
func (r Registry) Get(name string) (Backend, bool) {
	b, ok := r[name]
	return b, ok
}

// Names returns the registered provider names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MissingCredentials returns the required variables of b that env does not
// provide.
func MissingCredentials(b Backend, env func(string) string) []string {
	var missing []string
	for _, k := range b.RequiredCredentials() {
		if strings.TrimSpace(env(k)) == "" {
			missing = append(missing, k)
		}
	}
	return missing
}

// ParseModelSpec splits "provider:model". A bare model name is assigned a
// provider from its name, falling back to openai.
func ParseModelSpec(spec string) (provider, model string) {
	spec = strings.TrimSpace(spec)
	if p, m, ok := strings.Cut(spec, ":"); ok {
		return strings.ToLower(strings.TrimSpace(p)), strings.TrimSpace(m)
	}

	lower := strings.ToLower(spec)
	switch {
	case strings.Contains(lower, "gpt"), strings.Contains(lower, "openai"):
		return "openai", spec
	case strings.Contains(lower, "claude"):
		return "anthropic", spec
	case strings.Contains(lower, "gemini"):
		return "google", spec
	case strings.Contains(lower, "llama"), strings.Contains(lower, "mistral"):
		return "ollama", spec
	default:
		return "openai", spec
	}
}
