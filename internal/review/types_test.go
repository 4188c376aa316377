package review

import (
	"encoding/json"
	"testing"
)

func TestLabels_ClosedSet(t *testing.T) {
	labels := Labels()
	if len(labels) != 8 {
		t.Fatalf("Labels() returned %d labels, want 8", len(labels))
	}
	seen := make(map[Label]bool)
	for _, l := range labels {
		if seen[l] {
			t.Errorf("duplicate label %q", l)
		}
		seen[l] = true
		if !l.Valid() {
			t.Errorf("%q.Valid() = false, want true", l)
		}
	}
}

func TestLabel_Valid(t *testing.T) {
	tests := []struct {
		label Label
		want  bool
	}{
		{"security", true},
		{"potential_issues", true},
		{"Security", false},
		{"bug", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.label.Valid(); got != tt.want {
			t.Errorf("Label(%q).Valid() = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestLabel_Humanize(t *testing.T) {
	if got := LabelPerformanceAndOptimization.Humanize(); got != "performance and optimization" {
		t.Errorf("Humanize() = %q", got)
	}
}

func TestLineNumber_Unmarshal(t *testing.T) {
	tests := []struct {
		input string
		want  LineNumber
	}{
		{`12`, 12},
		{`"12"`, 12},
		{`" 7 "`, 7},
		{`3.0`, 3},
		{`null`, 0},
		{`""`, 0},
		{`"10-12"`, 10},
		{`"line 42"`, 42},
		{`"N/A"`, 0},
		{`"starting_line"`, 0},
		{`[5, 6]`, 5},
		{`true`, 0},
	}
	for _, tt := range tests {
		var n LineNumber
		if err := json.Unmarshal([]byte(tt.input), &n); err != nil {
			t.Errorf("Unmarshal(%s) error: %v", tt.input, err)
			continue
		}
		if n != tt.want {
			t.Errorf("Unmarshal(%s) = %d, want %d", tt.input, n, tt.want)
		}
	}
}

func TestLabel_UnmarshalNonString(t *testing.T) {
	tests := []struct {
		input string
		want  Label
	}{
		{`"security"`, LabelSecurity},
		{`3`, "3"},
		{`null`, ""},
		{`["security"]`, `["security"]`},
	}
	for _, tt := range tests {
		var l Label
		if err := json.Unmarshal([]byte(tt.input), &l); err != nil {
			t.Errorf("Unmarshal(%s) error: %v", tt.input, err)
			continue
		}
		if l != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, l, tt.want)
		}
		if tt.want != LabelSecurity && l.Valid() {
			t.Errorf("Label(%q).Valid() = true, want false", l)
		}
	}
}

func TestGroundTruth_Clone(t *testing.T) {
	orig := &GroundTruth{
		OverallSummary: "summary",
		CodeSuggestions: []CodeSuggestion{
			{RelevantFile: "a.js", Label: LabelSecurity, RelevantLinesStart: 1, RelevantLinesEnd: 2},
		},
	}
	c := orig.Clone()
	c.CodeSuggestions[0].Label = LabelCodeStyle
	c.OverallSummary = "changed"

	if orig.CodeSuggestions[0].Label != LabelSecurity {
		t.Error("Clone shares suggestion storage with the original")
	}
	if orig.OverallSummary != "summary" {
		t.Error("Clone mutated the original summary")
	}
	var nilGT *GroundTruth
	if nilGT.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestGroundTruth_FirstLabel(t *testing.T) {
	var empty GroundTruth
	if _, ok := empty.FirstLabel(); ok {
		t.Error("FirstLabel on empty ground truth should report false")
	}
	gt := GroundTruth{CodeSuggestions: []CodeSuggestion{{Label: LabelErrorHandling}, {Label: LabelSecurity}}}
	l, ok := gt.FirstLabel()
	if !ok || l != LabelErrorHandling {
		t.Errorf("FirstLabel() = %q, %v; want %q, true", l, ok, LabelErrorHandling)
	}
}
