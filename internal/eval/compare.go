package eval

import (
	"fmt"

	"github.com/dshills/bugbench/internal/review"
)

// SuggestionView is the side-by-side rendering of one suggestion.
type SuggestionView struct {
	Label        string `json:"label" yaml:"label"`
	Summary      string `json:"summary" yaml:"summary"`
	Content      string `json:"content" yaml:"content"`
	ExistingCode string `json:"existing_code" yaml:"existing_code"`
	ImprovedCode string `json:"improved_code" yaml:"improved_code"`
	Lines        string `json:"lines" yaml:"lines"`
}

// ComparisonEntry pairs the expected and predicted first suggestion of a
// unit.
type ComparisonEntry struct {
	BugID        string         `json:"bug_id" yaml:"bug_id"`
	FilePath     string         `json:"file_path" yaml:"file_path"`
	LabelsMatch  bool           `json:"labels_match" yaml:"labels_match"`
	LinesOverlap bool           `json:"lines_overlap" yaml:"lines_overlap"`
	GroundTruth  SuggestionView `json:"ground_truth" yaml:"ground_truth"`
	Predicted    SuggestionView `json:"predicted" yaml:"predicted"`
}

// ComparisonMetadata identifies the run a comparison came from.
type ComparisonMetadata struct {
	Model        string `json:"model" yaml:"model"`
	AnalysisDate string `json:"analysis_date" yaml:"analysis_date"`
	TotalFiles   int    `json:"total_files" yaml:"total_files"`
}

// ComparisonSummary counts label agreement across compared units.
type ComparisonSummary struct {
	TotalComparisons int     `json:"total_comparisons" yaml:"total_comparisons"`
	LabelsMatched    int     `json:"labels_matched" yaml:"labels_matched"`
	LinesOverlapped  int     `json:"lines_overlapped" yaml:"lines_overlapped"`
	LabelAccuracy    float64 `json:"label_accuracy" yaml:"label_accuracy"`
}

// Comparison is the detailed comparison report.
type Comparison struct {
	Metadata            ComparisonMetadata `json:"metadata" yaml:"metadata"`
	Summary             ComparisonSummary  `json:"summary" yaml:"summary"`
	DetailedComparisons []ComparisonEntry  `json:"detailed_comparisons" yaml:"detailed_comparisons"`
}

// Compare builds side-by-side views for every valid unit where both the
// ground truth and the prediction carry a suggestion. AnalysisDate is left
// for the caller to fill.
func Compare(results []Result) Comparison {
	c := Comparison{
		Metadata:            ComparisonMetadata{Model: "unknown", TotalFiles: len(results)},
		DetailedComparisons: []ComparisonEntry{},
	}
	if len(results) > 0 {
		c.Metadata.Model = results[0].Model
	}

	for _, r := range results {
		if !r.Valid() || !r.HasSuggestions {
			continue
		}
		if !r.GroundTruth.HasSuggestions() || !r.Prediction.Parsed.HasSuggestions() {
			continue
		}
		gt := r.GroundTruth.CodeSuggestions[0]
		pred := r.Prediction.Parsed.CodeSuggestions[0]

		entry := ComparisonEntry{
			BugID:        r.BugID,
			FilePath:     r.FilePath,
			LabelsMatch:  gt.Label == pred.Label,
			LinesOverlap: linesOverlap(gt, pred),
			GroundTruth:  viewOf(gt),
			Predicted:    viewOf(pred),
		}
		c.DetailedComparisons = append(c.DetailedComparisons, entry)
		if entry.LabelsMatch {
			c.Summary.LabelsMatched++
		}
		if entry.LinesOverlap {
			c.Summary.LinesOverlapped++
		}
	}

	c.Summary.TotalComparisons = len(c.DetailedComparisons)
	if c.Summary.TotalComparisons > 0 {
		c.Summary.LabelAccuracy = round3(float64(c.Summary.LabelsMatched) / float64(c.Summary.TotalComparisons))
	}
	return c
}

func viewOf(s review.CodeSuggestion) SuggestionView {
	return SuggestionView{
		Label:        string(s.Label),
		Summary:      s.OneSentenceSummary,
		Content:      s.SuggestionContent,
		ExistingCode: s.ExistingCode,
		ImprovedCode: s.ImprovedCode,
		Lines:        fmt.Sprintf("%d-%d", s.RelevantLinesStart, s.RelevantLinesEnd),
	}
}

// linesOverlap reports whether two suggestions' line ranges intersect.
// Ranges of zero or negative numbers never overlap.
func linesOverlap(a, b review.CodeSuggestion) bool {
	as, ae := a.RelevantLinesStart, a.RelevantLinesEnd
	bs, be := b.RelevantLinesStart, b.RelevantLinesEnd
	if as <= 0 || bs <= 0 {
		return false
	}
	if ae < as {
		ae = as
	}
	if be < bs {
		be = bs
	}
	return as <= be && bs <= ae
}
