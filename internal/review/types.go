package review

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Label is the category a review suggestion is filed under.
type Label string

const (
	LabelSecurity                   Label = "security"
	LabelErrorHandling              Label = "error_handling"
	LabelRefactoring                Label = "refactoring"
	LabelPerformanceAndOptimization Label = "performance_and_optimization"
	LabelMaintainability            Label = "maintainability"
	LabelPotentialIssues            Label = "potential_issues"
	LabelCodeStyle                  Label = "code_style"
	LabelDocumentationAndComments   Label = "documentation_and_comments"
)

// Labels returns the closed set of labels a suggestion may carry.
func Labels() []Label {
	return []Label{
		LabelSecurity,
		LabelErrorHandling,
		LabelRefactoring,
		LabelPerformanceAndOptimization,
		LabelMaintainability,
		LabelPotentialIssues,
		LabelCodeStyle,
		LabelDocumentationAndComments,
	}
}

// Valid reports whether l is one of the canonical labels. Matching is exact.
func (l Label) Valid() bool {
	for _, c := range Labels() {
		if l == c {
			return true
		}
	}
	return false
}

// Humanize returns the label with underscores replaced by spaces.
func (l Label) Humanize() string {
	return strings.ReplaceAll(string(l), "_", " ")
}

// UnmarshalJSON accepts any JSON value. A string is kept as is; anything
// else keeps its literal text, which never matches a canonical label.
func (l *Label) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = Label(s)
		return nil
	}
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		raw = ""
	}
	*l = Label(raw)
	return nil
}

// LineNumber is a 1-based line number. It decodes from a JSON number or from
// a string, since models frequently quote them or send ranges such as
// "10-12". The first run of digits is used; a value without one decodes
// to 0.
type LineNumber int

func (n *LineNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = str
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		*n = LineNumber(int(f))
		return nil
	}
	*n = LineNumber(leadingInt(s))
	return nil
}

// leadingInt returns the first run of decimal digits in s, or 0.
func leadingInt(s string) int {
	start := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	v, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0
	}
	return v
}

// CodeSuggestion is a single review finding in the dataset format.
//
// In ground truth built from an inverted diff, ExistingCode holds the fixed
// code and ImprovedCode holds the buggy code.
type CodeSuggestion struct {
	RelevantFile       string     `json:"relevantFile" yaml:"relevantFile"`
	Language           string     `json:"language" yaml:"language"`
	SuggestionContent  string     `json:"suggestionContent" yaml:"suggestionContent"`
	ExistingCode       string     `json:"existingCode" yaml:"existingCode"`
	ImprovedCode       string     `json:"improvedCode" yaml:"improvedCode"`
	OneSentenceSummary string     `json:"oneSentenceSummary" yaml:"oneSentenceSummary"`
	RelevantLinesStart LineNumber `json:"relevantLinesStart" yaml:"relevantLinesStart"`
	RelevantLinesEnd   LineNumber `json:"relevantLinesEnd" yaml:"relevantLinesEnd"`
	Label              Label      `json:"label" yaml:"label"`
}

// GroundTruth is the expected review output for one file change. Model
// predictions share the same shape.
type GroundTruth struct {
	OverallSummary  string           `json:"overallSummary" yaml:"overallSummary"`
	CodeSuggestions []CodeSuggestion `json:"codeSuggestions" yaml:"codeSuggestions"`
}

// HasSuggestions reports whether g carries at least one suggestion.
func (g *GroundTruth) HasSuggestions() bool {
	return g != nil && len(g.CodeSuggestions) > 0
}

// FirstLabel returns the label of the first suggestion.
func (g *GroundTruth) FirstLabel() (Label, bool) {
	if !g.HasSuggestions() {
		return "", false
	}
	return g.CodeSuggestions[0].Label, true
}

// Clone returns a deep copy of g.
func (g *GroundTruth) Clone() *GroundTruth {
	if g == nil {
		return nil
	}
	c := &GroundTruth{OverallSummary: g.OverallSummary}
	if g.CodeSuggestions != nil {
		c.CodeSuggestions = make([]CodeSuggestion, len(g.CodeSuggestions))
		copy(c.CodeSuggestions, g.CodeSuggestions)
	}
	return c
}
