package eval

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/bugbench/internal/review"
)

// ReportMetadata describes an evaluation run.
type ReportMetadata struct {
	Model               string `json:"model" yaml:"model"`
	Dataset             string `json:"dataset" yaml:"dataset"`
	EvaluationDate      string `json:"evaluation_date" yaml:"evaluation_date"`
	RunID               string `json:"run_id" yaml:"run_id"`
	TotalFilesEvaluated int    `json:"total_files_evaluated" yaml:"total_files_evaluated"`
}

// Detail is the persisted form of one Result.
type Detail struct {
	BugID                  string                  `json:"bug_id" yaml:"bug_id"`
	FilePath               string                  `json:"file_path" yaml:"file_path"`
	GroundTruthLabel       string                  `json:"ground_truth_label" yaml:"ground_truth_label"`
	PredictedLabel         *string                 `json:"predicted_label" yaml:"predicted_label"`
	DetectedBug            bool                    `json:"detected_bug" yaml:"detected_bug"`
	CorrectLabel           bool                    `json:"correct_label" yaml:"correct_label"`
	HasSuggestions         bool                    `json:"has_suggestions" yaml:"has_suggestions"`
	Error                  *string                 `json:"error" yaml:"error"`
	GroundTruthSuggestions []review.CodeSuggestion `json:"ground_truth_suggestions" yaml:"ground_truth_suggestions"`
	PredictedSuggestions   []review.CodeSuggestion `json:"predicted_suggestions" yaml:"predicted_suggestions"`
	GroundTruthSummary     string                  `json:"ground_truth_summary" yaml:"ground_truth_summary"`
	PredictedSummary       string                  `json:"predicted_summary" yaml:"predicted_summary"`
	InputPrompt            string                  `json:"input_prompt" yaml:"input_prompt"`
	RawLLMResponse         string                  `json:"raw_llm_response" yaml:"raw_llm_response"`
}

// Report is the persisted evaluation document.
type Report struct {
	Metadata        ReportMetadata `json:"metadata" yaml:"metadata"`
	Metrics         Metrics        `json:"metrics" yaml:"metrics"`
	DetailedResults []Detail       `json:"detailed_results" yaml:"detailed_results"`
}

// NewReport assembles a report. A missing run id or date is generated.
func NewReport(results []Result, metrics Metrics, meta ReportMetadata) *Report {
	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}
	if meta.EvaluationDate == "" {
		meta.EvaluationDate = time.Now().Format(time.RFC3339)
	}
	if meta.Model == "" {
		meta.Model = metrics.Model
	}
	meta.TotalFilesEvaluated = len(results)

	r := &Report{
		Metadata:        meta,
		Metrics:         metrics,
		DetailedResults: make([]Detail, 0, len(results)),
	}
	for _, res := range results {
		r.DetailedResults = append(r.DetailedResults, detailOf(res))
	}
	return r
}

func detailOf(r Result) Detail {
	d := Detail{
		BugID:                  r.BugID,
		FilePath:               r.FilePath,
		GroundTruthLabel:       string(r.GroundTruthLabel),
		DetectedBug:            r.DetectedBug,
		CorrectLabel:           r.CorrectLabel,
		HasSuggestions:         r.HasSuggestions,
		GroundTruthSuggestions: r.GroundTruth.CodeSuggestions,
		PredictedSuggestions:   []review.CodeSuggestion{},
		GroundTruthSummary:     r.GroundTruth.OverallSummary,
		InputPrompt:            r.Prediction.InputPrompt,
		RawLLMResponse:         r.Prediction.RawResponse,
	}
	if d.GroundTruthSuggestions == nil {
		d.GroundTruthSuggestions = []review.CodeSuggestion{}
	}
	if r.PredictedLabel != nil {
		l := string(*r.PredictedLabel)
		d.PredictedLabel = &l
	}
	if r.Error != "" {
		e := r.Error
		d.Error = &e
	}
	if p := r.Prediction.Parsed; p != nil {
		d.PredictedSummary = p.OverallSummary
		if p.CodeSuggestions != nil {
			d.PredictedSuggestions = p.CodeSuggestions
		}
	}
	return d
}

// SafeModelName makes a model spec usable in a file name.
func SafeModelName(model string) string {
	if model == "" {
		return "unknown"
	}
	return strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(model)
}

const fileTimestamp = "20060102_150405"

// ReportFilename returns evaluation_<model>_<timestamp>.json.
func ReportFilename(model string, ts time.Time) string {
	return "evaluation_" + SafeModelName(model) + "_" + ts.Format(fileTimestamp) + ".json"
}

// ComparisonFilename returns detailed_comparison_<model>_<timestamp>.json.
func ComparisonFilename(model string, ts time.Time) string {
	return "detailed_comparison_" + SafeModelName(model) + "_" + ts.Format(fileTimestamp) + ".json"
}
