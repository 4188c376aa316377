package eval

import (
	"math"

	"github.com/dshills/bugbench/internal/review"
)

// Score is the verdict for one unit.
type Score struct {
	PredictedLabel *review.Label
	Detected       bool
	Correct        bool
	HasSuggestions bool
}

// ScoreUnit compares a prediction to the expected label. Only the first
// predicted suggestion counts and labels must match exactly.
func ScoreUnit(gt review.Label, pred *review.GroundTruth) Score {
	if !pred.HasSuggestions() {
		return Score{}
	}
	label := pred.CodeSuggestions[0].Label
	return Score{
		PredictedLabel: &label,
		Detected:       true,
		Correct:        label == gt,
		HasSuggestions: true,
	}
}

// Metrics aggregates scores over a run. Rates are rounded to three decimals.
type Metrics struct {
	Model                   string         `json:"model" yaml:"model"`
	TotalFiles              int            `json:"total_files" yaml:"total_files"`
	ValidFiles              int            `json:"valid_files" yaml:"valid_files"`
	BugDetectionRate        float64        `json:"bug_detection_rate" yaml:"bug_detection_rate"`
	LabelAccuracy           float64        `json:"label_accuracy" yaml:"label_accuracy"`
	BugsDetected            int            `json:"bugs_detected" yaml:"bugs_detected"`
	CorrectLabels           int            `json:"correct_labels" yaml:"correct_labels"`
	GroundTruthDistribution map[string]int `json:"ground_truth_distribution" yaml:"ground_truth_distribution"`
	PredictedDistribution   map[string]int `json:"predicted_distribution" yaml:"predicted_distribution"`
	ErrorRate               float64        `json:"error_rate" yaml:"error_rate"`
	Error                   string         `json:"error,omitempty" yaml:"error,omitempty"`
}

const errNoValidResults = "No valid results to calculate metrics"

// ComputeMetrics aggregates results. Detection and accuracy are computed
// over valid results only; errored units count towards the error rate.
func ComputeMetrics(results []Result) Metrics {
	m := Metrics{
		Model:                   "unknown",
		TotalFiles:              len(results),
		GroundTruthDistribution: map[string]int{},
		PredictedDistribution:   map[string]int{},
	}
	if len(results) > 0 {
		m.Model = results[0].Model
	}

	for _, r := range results {
		if !r.Valid() {
			continue
		}
		m.ValidFiles++
		m.GroundTruthDistribution[string(r.GroundTruthLabel)]++
		if r.PredictedLabel != nil && *r.PredictedLabel != "" {
			m.PredictedDistribution[string(*r.PredictedLabel)]++
		}
		if r.DetectedBug {
			m.BugsDetected++
			if r.CorrectLabel {
				m.CorrectLabels++
			}
		}
	}

	if m.TotalFiles > 0 {
		m.ErrorRate = round3(float64(m.TotalFiles-m.ValidFiles) / float64(m.TotalFiles))
	}
	if m.ValidFiles == 0 {
		m.Error = errNoValidResults
		return m
	}
	m.BugDetectionRate = round3(float64(m.BugsDetected) / float64(m.ValidFiles))
	if m.BugsDetected > 0 {
		m.LabelAccuracy = round3(float64(m.CorrectLabels) / float64(m.BugsDetected))
	}
	return m
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
