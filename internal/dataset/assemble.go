package dataset

import (
	"time"

	"github.com/dshills/bugbench/internal/diff"
	"github.com/dshills/bugbench/internal/review"
)

const sampleLimit = 500

// GroundTruthFunc builds the expected review for one file of a bug.
type GroundTruthFunc func(bug BugRecord, file FileChange) review.GroundTruth

// AssembleOptions supplies run-level metadata.
type AssembleOptions struct {
	// Stats maps each attempted project to its converted bug count.
	Stats map[string]int
	// Projects lists attempted projects in order. Defaults to the record order.
	Projects []string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Assemble builds the canonical dataset from converted records.
func Assemble(records []BugRecord, build GroundTruthFunc, opts AssembleOptions) *Dataset {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	stats := opts.Stats
	projects := opts.Projects
	if stats == nil {
		stats = make(map[string]int)
		for _, r := range records {
			stats[r.Project]++
		}
	}
	if projects == nil {
		seen := make(map[string]bool)
		for _, r := range records {
			if !seen[r.Project] {
				seen[r.Project] = true
				projects = append(projects, r.Project)
			}
		}
	}

	ds := &Dataset{
		Metadata: Metadata{
			DatasetName:       Name,
			Source:            Source,
			TotalBugs:         len(records),
			ConversionStats:   stats,
			ProjectsConverted: projects,
			ConversionDate:    now().Format(time.RFC3339),
			FormatVersion:     FormatVersion,
		},
		Bugs: make([]Bug, 0, len(records)),
	}

	for _, r := range records {
		bug := Bug{
			BugID:          r.BugID,
			Project:        r.Project,
			BugCategory:    r.Category,
			BugfixPatterns: r.BugfixPatterns,
			Files:          make([]File, 0, len(r.Files)),
		}
		for _, f := range r.Files {
			gt := build(r, f)
			bug.Files = append(bug.Files, File{
				FilePath:     f.Path,
				FileContent:  f.FixedContent,
				DiffContent:  f.FormattedDiff,
				GroundTruth:  &gt,
				TestScenario: TestScenario,
				DebugInfo:    debugInfo(f),
			})
		}
		ds.Bugs = append(ds.Bugs, bug)
	}
	return ds
}

func debugInfo(f FileChange) DebugInfo {
	var added, removed int
	for _, h := range diff.ParseHunks(f.UnifiedDiff) {
		for _, l := range h.Lines {
			switch l.Kind {
			case diff.Added:
				added++
			case diff.Removed:
				removed++
			}
		}
	}
	return DebugInfo{
		BuggyLinesCount:    added,
		FixedLinesCount:    removed,
		OriginalDiffSample: sample(f.UnifiedDiff),
		InvertedDiffSample: sample(f.FormattedDiff),
	}
}

// sample truncates s to sampleLimit runes, marking the cut with "...".
func sample(s string) string {
	if len(s) <= sampleLimit {
		return s
	}
	r := []rune(s)
	if len(r) <= sampleLimit {
		return s
	}
	return string(r[:sampleLimit]) + "..."
}
