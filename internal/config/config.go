package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrInvalid is returned by Validate and by loaders when a value cannot be
// used.
var ErrInvalid = errors.New("invalid configuration")

// KnownProjects are the BugsJS subject projects a conversion may select.
var KnownProjects = []string{
	"Bower", "Eslint", "Express", "Hessian.js", "Hexo",
	"Karma", "Mongoose", "Node-redis", "Pencilblue", "Shields",
}

// Formats are the accepted report formats.
var Formats = []string{"text", "json", "markdown", "yaml"}

// Config represents the bugbench configuration.
type Config struct {
	Model                  string        `json:"model"`
	BugsJSPath             string        `json:"bugsjsPath,omitempty"`
	Projects               []string      `json:"projects,omitempty"`
	MaxBugs                int           `json:"maxBugs"`
	Extensions             []string      `json:"extensions"`
	Language               string        `json:"language"`
	DatasetDir             string        `json:"datasetDir"`
	ResultsDir             string        `json:"resultsDir"`
	MaxFiles               int           `json:"maxFiles"`
	Concurrency            int           `json:"concurrency"`
	TimeoutSeconds         int           `json:"timeoutSeconds"`
	CheckoutTimeoutSeconds int           `json:"checkoutTimeoutSeconds"`
	Format                 string        `json:"format"`
	Cache                  CacheConfig   `json:"cache"`
	Privacy                PrivacyConfig `json:"privacy"`
}

// CacheConfig controls caching of model replies.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls redaction of prompts before they leave the machine.
type PrivacyConfig struct {
	RedactSecrets bool     `json:"redactSecrets"`
	RedactPaths   []string `json:"redactPaths,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Extensions:             []string{".js"},
		Language:               "javascript",
		DatasetDir:             "datasets",
		ResultsDir:             "evaluation_results",
		Concurrency:            1,
		TimeoutSeconds:         120,
		CheckoutTimeoutSeconds: 300,
		Format:                 "text",
		Cache: CacheConfig{
			Enabled:    false,
			TTLSeconds: 7 * 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: false,
			RedactPaths:   []string{"**/.env"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for bugbench.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "bugbench"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "bugbench"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "bugbench"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "bugbench"), nil
	default:
		return filepath.Join(home, ".config", "bugbench"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile returns the defaults with the config file applied on top. Keys
// absent from the file keep their default, booleans included. A missing
// file is not an error.
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Init writes a default config file. It refuses to overwrite an existing
// file unless force is set.
func Init(force bool) (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
		}
	}
	return path, Save(Default())
}

// Load builds the effective config by merging:
// defaults <- file <- .env <- env <- overrides.
// The overrides map comes from CLI flags; empty values are ignored.
func Load(overrides map[string]string) (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadDotEnv populates the process environment from path. Variables that
// are already set win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// field describes one settable key.
type field struct {
	env string
	set func(cfg *Config, value string) error
}

var fields = map[string]field{
	"model":      {"BUGBENCH_MODEL", func(c *Config, v string) error { c.Model = v; return nil }},
	"bugsjsPath": {"BUGBENCH_BUGSJS_PATH", func(c *Config, v string) error { c.BugsJSPath = v; return nil }},
	"projects":   {"BUGBENCH_PROJECTS", func(c *Config, v string) error { c.Projects = splitList(v); return nil }},
	"maxBugs":    {"BUGBENCH_MAX_BUGS", intSetter("maxBugs", func(c *Config, n int) { c.MaxBugs = n })},
	"extensions": {"BUGBENCH_EXTENSIONS", func(c *Config, v string) error { c.Extensions = splitList(v); return nil }},
	"language":   {"BUGBENCH_LANGUAGE", func(c *Config, v string) error { c.Language = v; return nil }},
	"datasetDir": {"BUGBENCH_DATASET_DIR", func(c *Config, v string) error { c.DatasetDir = v; return nil }},
	"resultsDir": {"BUGBENCH_RESULTS_DIR", func(c *Config, v string) error { c.ResultsDir = v; return nil }},
	"maxFiles":   {"BUGBENCH_MAX_FILES", intSetter("maxFiles", func(c *Config, n int) { c.MaxFiles = n })},
	"concurrency": {"BUGBENCH_CONCURRENCY",
		intSetter("concurrency", func(c *Config, n int) { c.Concurrency = n })},
	"timeoutSeconds": {"BUGBENCH_TIMEOUT_SECONDS",
		intSetter("timeoutSeconds", func(c *Config, n int) { c.TimeoutSeconds = n })},
	"checkoutTimeoutSeconds": {"BUGBENCH_CHECKOUT_TIMEOUT_SECONDS",
		intSetter("checkoutTimeoutSeconds", func(c *Config, n int) { c.CheckoutTimeoutSeconds = n })},
	"format":        {"BUGBENCH_FORMAT", func(c *Config, v string) error { c.Format = v; return nil }},
	"cache.enabled": {"BUGBENCH_CACHE", boolSetter("cache.enabled", func(c *Config, b bool) { c.Cache.Enabled = b })},
	"cache.dir":     {"BUGBENCH_CACHE_DIR", func(c *Config, v string) error { c.Cache.Dir = v; return nil }},
	"cache.ttlSeconds": {"BUGBENCH_CACHE_TTL_SECONDS",
		intSetter("cache.ttlSeconds", func(c *Config, n int) { c.Cache.TTLSeconds = n })},
	"privacy.redactSecrets": {"BUGBENCH_REDACT_SECRETS",
		boolSetter("privacy.redactSecrets", func(c *Config, b bool) { c.Privacy.RedactSecrets = b })},
	"privacy.redactPaths": {"", func(c *Config, v string) error { c.Privacy.RedactPaths = splitList(v); return nil }},
}

func intSetter(key string, apply func(*Config, int)) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer: %v", ErrInvalid, key, err)
		}
		apply(c, n)
		return nil
	}
}

func boolSetter(key string, apply func(*Config, bool)) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s must be a boolean: %v", ErrInvalid, key, err)
		}
		apply(c, b)
		return nil
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Keys returns the settable config keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mergeEnv(cfg *Config) error {
	for _, key := range Keys() {
		f := fields[key]
		if f.env == "" {
			continue
		}
		v := os.Getenv(f.env)
		if v == "" {
			continue
		}
		if err := f.set(cfg, v); err != nil {
			return fmt.Errorf("%s: %w", f.env, err)
		}
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for _, key := range Keys() {
		v, ok := overrides[key]
		if !ok || v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: unknown config key: %s (known: %s)", ErrInvalid, key, strings.Join(Keys(), ", "))
	}
	return f.set(cfg, value)
}

// Validate rejects values no command can work with.
func Validate(cfg Config) error {
	var problems []string
	if cfg.MaxBugs < 0 {
		problems = append(problems, "maxBugs must not be negative")
	}
	if cfg.MaxFiles < 0 {
		problems = append(problems, "maxFiles must not be negative")
	}
	if cfg.Concurrency < 1 {
		problems = append(problems, "concurrency must be at least 1")
	}
	if cfg.TimeoutSeconds <= 0 {
		problems = append(problems, "timeoutSeconds must be positive")
	}
	if cfg.CheckoutTimeoutSeconds <= 0 {
		problems = append(problems, "checkoutTimeoutSeconds must be positive")
	}
	if cfg.Cache.TTLSeconds < 0 {
		problems = append(problems, "cache.ttlSeconds must not be negative")
	}
	if len(cfg.Extensions) == 0 {
		problems = append(problems, "extensions must not be empty")
	}
	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			problems = append(problems, fmt.Sprintf("extension %q must start with a dot", ext))
		}
	}
	if !contains(Formats, cfg.Format) {
		problems = append(problems, fmt.Sprintf("format %q is not one of %s", cfg.Format, strings.Join(Formats, ", ")))
	}
	for _, p := range cfg.Projects {
		if !contains(KnownProjects, p) {
			problems = append(problems, fmt.Sprintf("unknown project %q", p))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
