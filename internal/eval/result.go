package eval

import (
	"github.com/dshills/bugbench/internal/review"
)

// LabelNone is the ground-truth label recorded for files without an
// expected suggestion.
const LabelNone review.Label = "none"

// Per-unit failure messages. They are stable strings so that reports from
// different runs can be compared.
const (
	ErrMsgNoGroundTruth = "No ground truth available"
	ErrMsgLLMFailed     = "LLM API failed"
	ErrMsgParseFailed   = "Failed to parse JSON response"
)

// Prediction is what the model produced for one unit.
type Prediction struct {
	Parsed      *review.GroundTruth `json:"parsed,omitempty" yaml:"parsed,omitempty"`
	RawResponse string              `json:"raw_response,omitempty" yaml:"raw_response,omitempty"`
	InputPrompt string              `json:"input_prompt,omitempty" yaml:"input_prompt,omitempty"`
}

// Result is the outcome of evaluating one (bug, file) unit.
type Result struct {
	BugID            string
	FilePath         string
	GroundTruthLabel review.Label
	PredictedLabel   *review.Label
	DetectedBug      bool
	CorrectLabel     bool
	HasSuggestions   bool
	GroundTruth      review.GroundTruth
	Prediction       Prediction
	Model            string
	// Error is empty for a valid result.
	Error string
}

// Valid reports whether the unit completed without error.
func (r Result) Valid() bool {
	return r.Error == ""
}
