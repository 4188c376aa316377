package groundtruth

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dshills/bugbench/internal/diff"
	"github.com/dshills/bugbench/internal/review"
)

// DefaultLanguage is the language tag used when the extension says nothing
// more specific.
const DefaultLanguage = "javascript"

// BugInfo identifies the bug a file change belongs to.
type BugInfo struct {
	// ID is the qualified bug id, e.g. "Express-3".
	ID       string
	Category string
}

// ExtractCode returns the removed lines and the added lines of a unified
// diff, each joined with newlines and trimmed.
func ExtractCode(unified string) (existing, improved string) {
	var removed, added []string
	for _, h := range diff.ParseHunks(unified) {
		for _, l := range h.Lines {
			switch l.Kind {
			case diff.Removed:
				removed = append(removed, l.Text)
			case diff.Added:
				added = append(added, l.Text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(removed, "\n")), strings.TrimSpace(strings.Join(added, "\n"))
}

// LineSpan returns the absolute new-file numbers of the first and last added
// lines. A diff with no added lines yields (1, 1).
func LineSpan(unified string) (start, end int) {
	current := 1
	first, last := 0, 0
	seen := false
	for _, h := range diff.ParseHunks(unified) {
		if h.HasNewStart {
			current = h.NewStart
		}
		for _, l := range h.Lines {
			switch l.Kind {
			case diff.Added:
				if !seen {
					first = current
					seen = true
				}
				last = current
				current++
			case diff.Context:
				current++
			}
		}
	}
	if !seen {
		return 1, 1
	}
	return first, last
}

// Language returns the language tag for a file path.
func Language(path, defaultTag string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx":
		return "typescript"
	}
	if defaultTag == "" {
		return DefaultLanguage
	}
	return defaultTag
}

// Build synthesizes the expected review for one changed file. The suggestion
// list is empty when the diff carries no code on either side.
func Build(bug BugInfo, change diff.Change, defaultLanguage string) review.GroundTruth {
	m := MapCategory(bug.Category)
	existing, improved := ExtractCode(change.UnifiedDiff)
	start, end := LineSpan(change.UnifiedDiff)

	gt := review.GroundTruth{
		OverallSummary:  fmt.Sprintf("Bug %s: %s", bug.ID, m.Description),
		CodeSuggestions: []review.CodeSuggestion{},
	}
	if existing == "" && improved == "" {
		return gt
	}
	gt.CodeSuggestions = append(gt.CodeSuggestions, review.CodeSuggestion{
		RelevantFile:       change.Path,
		Language:           Language(change.Path, defaultLanguage),
		SuggestionContent:  m.Description,
		ExistingCode:       existing,
		ImprovedCode:       improved,
		OneSentenceSummary: "Fix " + m.Label.Humanize(),
		RelevantLinesStart: review.LineNumber(start),
		RelevantLinesEnd:   review.LineNumber(end),
		Label:              m.Label,
	})
	return gt
}
