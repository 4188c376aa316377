package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/bugbench/internal/bugsjs"
	"github.com/dshills/bugbench/internal/dataset"
	"github.com/dshills/bugbench/internal/eval"
)

// isolate points the config file at a temp directory so tests never read
// or write the user's config.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

type harness struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
	vars   map[string]string
	co     bugsjs.CheckoutFunc
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	e := &env{
		stdout:   &h.stdout,
		stderr:   &h.stderr,
		getenv:   func(k string) string { return h.vars[k] },
		checkout: h.co,
	}
	return execute(e, args)
}

var trees = map[string]map[string]string{
	"1/buggy": {"lib/router.js": "a();\nb();\n", "test/app.js": "x\n"},
	"1/fixed": {"lib/router.js": "a();\nguard();\nb();\n", "test/app.js": "y\n"},
}

func fakeCheckout(ctx context.Context, project, id string, v bugsjs.Version, dest string) error {
	files, ok := trees[fmt.Sprintf("%s/%s", id, v)]
	if !ok {
		return fmt.Errorf("%w: %s-%s missing", bugsjs.ErrRetrieval, project, id)
	}
	for rel, content := range files {
		path := filepath.Join(dest, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// bugsjsRoot lays out a framework root with one Express bug.
func bugsjsRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	path := bugsjs.RegistryPath(root, "Express")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	registry := "ID;Bug category;Bugfix patterns\n1;Security;IF-APC\n"
	if err := os.WriteFile(path, []byte(registry), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

// converted runs convert against the fake checkout and returns the dataset
// directory.
func converted(t *testing.T, h *harness) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "datasets")
	code := h.run("convert", "--bugsjs-path", bugsjsRoot(t), "--projects", "Express", "--output", out, "--no-spinner")
	if code != ExitSuccess {
		t.Fatalf("convert exit = %d, stderr: %s", code, h.stderr.String())
	}
	return out
}

func ollamaServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": reply}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVersion(t *testing.T) {
	h := &harness{}
	if code := h.run("version"); code != ExitSuccess {
		t.Fatalf("exit = %d, want %d", code, ExitSuccess)
	}
	if !strings.Contains(h.stdout.String(), "bugbench version "+version) {
		t.Errorf("stdout = %q", h.stdout.String())
	}
}

func TestUsageErrors(t *testing.T) {
	isolate(t)
	h := &harness{}
	if code := h.run("convert", "--no-such-flag"); code != ExitUsageError {
		t.Errorf("unknown flag exit = %d, want %d", code, ExitUsageError)
	}
	if code := h.run("frobnicate"); code != ExitUsageError {
		t.Errorf("unknown command exit = %d, want %d", code, ExitUsageError)
	}
}

func TestConvert_ConfigurationErrors(t *testing.T) {
	isolate(t)
	h := &harness{co: fakeCheckout}

	tests := []struct {
		name string
		args []string
	}{
		{"missing path", []string{"convert", "--no-spinner"}},
		{"unknown project", []string{"convert", "--bugsjs-path", t.TempDir(), "--projects", "Nope", "--no-spinner"}},
		{"no Projects dir", []string{"convert", "--bugsjs-path", t.TempDir(), "--no-spinner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := h.run(tt.args...); code != ExitConfigError {
				t.Errorf("exit = %d, want %d (stderr: %s)", code, ExitConfigError, h.stderr.String())
			}
			if !strings.Contains(h.stderr.String(), "Error:") {
				t.Errorf("stderr = %q, want an error line", h.stderr.String())
			}
		})
	}
}

func TestConvert(t *testing.T) {
	isolate(t)
	h := &harness{co: fakeCheckout}
	dir := converted(t, h)

	for _, name := range []string{dataset.FullFile, dataset.InputOnlyFile, dataset.GroundTruthOnlyFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	ds, err := dataset.Load(filepath.Join(dir, dataset.FullFile))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Metadata.TotalBugs != 1 {
		t.Errorf("TotalBugs = %d, want 1", ds.Metadata.TotalBugs)
	}
	if got := ds.FileCount(); got != 1 {
		t.Errorf("FileCount = %d, want 1 (test files are excluded)", got)
	}
	if !strings.Contains(h.stdout.String(), "Converted 1 bugs (1 files)") {
		t.Errorf("stdout = %q", h.stdout.String())
	}
}

func TestEvaluate(t *testing.T) {
	isolate(t)
	h := &harness{co: fakeCheckout}
	dir := converted(t, h)

	reply := "Here you go:\n```json\n" +
		`{"overallSummary":"adds a guard","codeSuggestions":[{"relevantFile":"lib/router.js",` +
		`"label":"security","relevantLinesStart":2,"relevantLinesEnd":2}]}` +
		"\n```"
	srv := ollamaServer(t, reply)
	h.vars = map[string]string{"OLLAMA_HOST": srv.URL}

	results := filepath.Join(t.TempDir(), "results")
	code := h.run("evaluate",
		"--dataset", filepath.Join(dir, dataset.FullFile),
		"--model", "ollama:test-model",
		"--output", results,
		"--format", "json",
		"--no-spinner")
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, h.stderr.String())
	}

	var report eval.Report
	if err := json.Unmarshal(h.stdout.Bytes(), &report); err != nil {
		t.Fatalf("stdout is not a JSON report: %v\n%s", err, h.stdout.String())
	}
	if report.Metadata.Model != "ollama:test-model" {
		t.Errorf("Model = %q", report.Metadata.Model)
	}
	if report.Metadata.TotalFilesEvaluated != 1 {
		t.Errorf("TotalFilesEvaluated = %d, want 1", report.Metadata.TotalFilesEvaluated)
	}
	if report.Metrics.BugsDetected != 1 || report.Metrics.CorrectLabels != 1 {
		t.Errorf("Metrics = %+v, want one detected and correct", report.Metrics)
	}

	entries, err := os.ReadDir(results)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var sawReport, sawComparison bool
	for _, e := range entries {
		sawReport = sawReport || strings.HasPrefix(e.Name(), "evaluation_ollama_test-model_")
		sawComparison = sawComparison || strings.HasPrefix(e.Name(), "detailed_comparison_ollama_test-model_")
	}
	if !sawReport || !sawComparison {
		t.Errorf("results dir = %v, want report and comparison files", entries)
	}

	summary := filepath.Join(t.TempDir(), "out", "summary.md")
	code = h.run("evaluate",
		"--dataset", filepath.Join(dir, dataset.FullFile),
		"--model", "ollama:test-model",
		"--output", results,
		"--format", "markdown",
		"--summary-out", summary,
		"--no-spinner")
	if code != ExitSuccess {
		t.Fatalf("summary-out exit = %d, stderr: %s", code, h.stderr.String())
	}
	if h.stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty when --summary-out is set", h.stdout.String())
	}
	if _, err := os.Stat(summary); err != nil {
		t.Errorf("summary file: %v", err)
	}
}

func TestEvaluate_MissingCredentials(t *testing.T) {
	isolate(t)
	h := &harness{co: fakeCheckout}
	dir := converted(t, h)

	code := h.run("evaluate", "--dataset", filepath.Join(dir, dataset.FullFile),
		"--model", "openai:gpt-4o", "--output", t.TempDir(), "--no-spinner")
	if code != ExitConfigError {
		t.Fatalf("exit = %d, want %d", code, ExitConfigError)
	}
	if !strings.Contains(h.stderr.String(), "OPENAI_API_KEY") {
		t.Errorf("stderr = %q, want the missing variable named", h.stderr.String())
	}
}

func TestEvaluate_MissingDataset(t *testing.T) {
	isolate(t)
	h := &harness{}
	code := h.run("evaluate", "--dataset", filepath.Join(t.TempDir(), "none.json"),
		"--model", "ollama:x", "--no-spinner")
	if code != ExitRuntimeError {
		t.Errorf("exit = %d, want %d", code, ExitRuntimeError)
	}
}

func TestProvidersList(t *testing.T) {
	h := &harness{vars: map[string]string{"OPENAI_API_KEY": "sk-test"}}
	if code := h.run("providers"); code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	out := h.stdout.String()
	for _, want := range []string{"openai", "anthropic", "google", "ollama", "custom", "missing ANTHROPIC_API_KEY"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "openai") && !strings.Contains(line, "ready") {
			t.Errorf("openai line = %q, want ready", line)
		}
	}
}

func TestProvidersDoctor(t *testing.T) {
	isolate(t)
	srv := ollamaServer(t, "ok")
	h := &harness{vars: map[string]string{"OLLAMA_HOST": srv.URL}}

	if code := h.run("providers", "doctor", "--model", "ollama:llama3"); code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, h.stderr.String())
	}
	if !strings.Contains(h.stdout.String(), "OK: ollama:llama3") {
		t.Errorf("stdout = %q", h.stdout.String())
	}

	if code := h.run("providers", "doctor", "--model", "anthropic:claude"); code != ExitConfigError {
		t.Errorf("missing key exit = %d, want %d", code, ExitConfigError)
	}
}

func TestConfigCommands(t *testing.T) {
	isolate(t)
	h := &harness{}

	if code := h.run("config", "init"); code != ExitSuccess {
		t.Fatalf("init exit = %d, stderr: %s", code, h.stderr.String())
	}
	if code := h.run("config", "init"); code == ExitSuccess {
		t.Error("second init without --force should fail")
	}
	if code := h.run("config", "init", "--force"); code != ExitSuccess {
		t.Errorf("init --force exit = %d", code)
	}

	if code := h.run("config", "set", "maxBugs", "5"); code != ExitSuccess {
		t.Fatalf("set exit = %d, stderr: %s", code, h.stderr.String())
	}
	if code := h.run("config", "set", "bogus", "1"); code != ExitConfigError {
		t.Errorf("unknown key exit = %d, want %d", code, ExitConfigError)
	}
	if code := h.run("config", "set", "format", "xml"); code != ExitConfigError {
		t.Errorf("invalid format exit = %d, want %d", code, ExitConfigError)
	}

	if code := h.run("config", "show"); code != ExitSuccess {
		t.Fatalf("show exit = %d", code)
	}
	var shown map[string]any
	if err := json.Unmarshal(h.stdout.Bytes(), &shown); err != nil {
		t.Fatalf("show output is not JSON: %v", err)
	}
	if shown["maxBugs"] != float64(5) {
		t.Errorf("maxBugs = %v, want 5", shown["maxBugs"])
	}
	if shown["format"] != "text" {
		t.Errorf("format = %v, want text", shown["format"])
	}
}

func TestCacheCommands(t *testing.T) {
	isolate(t)
	t.Setenv("BUGBENCH_CACHE_DIR", t.TempDir())
	h := &harness{}

	if code := h.run("cache", "show"); code != ExitSuccess {
		t.Fatalf("show exit = %d", code)
	}
	if !strings.Contains(h.stdout.String(), "Cache is disabled") {
		t.Errorf("stdout = %q", h.stdout.String())
	}

	if code := h.run("cache", "clear"); code != ExitSuccess {
		t.Fatalf("clear exit = %d, stderr: %s", code, h.stderr.String())
	}
	if !strings.Contains(h.stdout.String(), "Removed 0 cached responses") {
		t.Errorf("stdout = %q", h.stdout.String())
	}
}

func TestFailClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"eval configuration", fmt.Errorf("wrap: %w", eval.ErrConfiguration), ExitConfigError},
		{"conversion configuration", bugsjs.ErrConfiguration, ExitConfigError},
		{"nothing converted", bugsjs.ErrNothingConverted, ExitRuntimeError},
		{"other", os.ErrNotExist, ExitRuntimeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fail(tt.err)
			ee, ok := err.(*exitError)
			if !ok {
				t.Fatalf("fail() = %T, want *exitError", err)
			}
			if ee.code != tt.want {
				t.Errorf("code = %d, want %d", ee.code, tt.want)
			}
		})
	}
	if fail(nil) != nil {
		t.Error("fail(nil) should be nil")
	}
}
