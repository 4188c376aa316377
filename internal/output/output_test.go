package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dshills/bugbench/internal/eval"
	"github.com/dshills/bugbench/internal/review"
)

func sampleReport() *eval.Report {
	label := review.LabelSecurity
	results := []eval.Result{
		{
			BugID: "Express-1", FilePath: "lib/router/index.js", Model: "openai:gpt-4o",
			GroundTruthLabel: review.LabelSecurity, PredictedLabel: &label,
			DetectedBug: true, CorrectLabel: true, HasSuggestions: true,
			GroundTruth: review.GroundTruth{
				OverallSummary:  "Bug Express-1: Fix: security",
				CodeSuggestions: []review.CodeSuggestion{{Label: review.LabelSecurity, ExistingCode: "if (a < b && c)"}},
			},
			Prediction: eval.Prediction{
				Parsed: &review.GroundTruth{CodeSuggestions: []review.CodeSuggestion{{Label: label}}},
			},
		},
		{
			BugID: "Express-2", FilePath: "lib/app.js", Model: "openai:gpt-4o",
			GroundTruthLabel: review.LabelPotentialIssues, Error: eval.ErrMsgParseFailed,
		},
	}
	return eval.NewReport(results, eval.ComputeMetrics(results), eval.ReportMetadata{
		Dataset: "datasets/bugsjs_with_groundtruth.json",
		RunID:   "run-1",
	})
}

func TestGetWriter(t *testing.T) {
	for _, format := range []string{"text", "json", "markdown", "yaml"} {
		if _, err := GetWriter(format); err != nil {
			t.Errorf("GetWriter(%q) error: %v", format, err)
		}
	}
	if _, err := GetWriter("sarif"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Evaluation Summary: openai:gpt-4o",
		"Files evaluated:    1/2",
		"Bug detection rate: 100.0%",
		"Label accuracy:     100.0%",
		"Error rate:         50.0%",
		"security",
		"Run run-1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("output should not contain color codes when Color is false")
	}
}

func TestTextWriter_Color(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextWriter{Color: true}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Error("output should contain color codes when Color is true")
	}
}

func TestTextWriter_NoValidResults(t *testing.T) {
	results := []eval.Result{{Model: "m", Error: eval.ErrMsgLLMFailed}}
	r := eval.NewReport(results, eval.ComputeMetrics(results), eval.ReportMetadata{})

	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, r); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "No valid results to calculate metrics") {
		t.Errorf("output should report missing metrics:\n%s", buf.String())
	}
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	for _, key := range []string{"metadata", "metrics", "detailed_results"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
	if !strings.Contains(buf.String(), "if (a < b && c)") {
		t.Error("code should not be HTML-escaped")
	}
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"## Evaluation: openai:gpt-4o",
		"| Bug detection rate | 100.0% |",
		"| `security` | 1 |",
		"Failed units (1)",
		"| Express-2 | `lib/app.js` | Failed to parse JSON response |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestYAMLWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var decoded struct {
		Metadata struct {
			Model string `yaml:"model"`
		} `yaml:"metadata"`
		Metrics struct {
			ErrorRate float64 `yaml:"error_rate"`
		} `yaml:"metrics"`
		DetailedResults []struct {
			PredictedLabel *string `yaml:"predicted_label"`
		} `yaml:"detailed_results"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Metadata.Model != "openai:gpt-4o" {
		t.Errorf("model = %q, want %q", decoded.Metadata.Model, "openai:gpt-4o")
	}
	if decoded.Metrics.ErrorRate != 0.5 {
		t.Errorf("error_rate = %v, want 0.5", decoded.Metrics.ErrorRate)
	}
	if len(decoded.DetailedResults) != 2 || decoded.DetailedResults[1].PredictedLabel != nil {
		t.Errorf("detailed_results = %+v", decoded.DetailedResults)
	}
}

func TestWriteReport_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	if err := WriteReport(sampleReport(), "markdown", path); err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if !strings.HasPrefix(string(data), "## Evaluation") {
		t.Errorf("unexpected file content:\n%s", data)
	}
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cmp.json")
	cmp := eval.Compare(nil)
	if err := WriteJSONFile(path, cmp); err != nil {
		t.Fatalf("WriteJSONFile error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if !strings.Contains(string(data), `"detailed_comparisons": []`) {
		t.Errorf("unexpected content:\n%s", data)
	}
}
