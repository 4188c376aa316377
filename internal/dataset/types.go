package dataset

import (
	"github.com/dshills/bugbench/internal/review"
)

const (
	Name          = "bugsjs_converted"
	Source        = "BugsJS - JavaScript Bug Dataset"
	FormatVersion = "1.0"
	TestScenario  = "detect_bug_in_new_code"
)

// Metadata describes a dataset file.
type Metadata struct {
	DatasetName       string         `json:"dataset_name"`
	Source            string         `json:"source"`
	TotalBugs         int            `json:"total_bugs"`
	ConversionStats   map[string]int `json:"conversion_stats"`
	ProjectsConverted []string       `json:"projects_converted"`
	ConversionDate    string         `json:"conversion_date"`
	FormatVersion     string         `json:"format_version"`
	// IncludesGroundTruth is only set on the input-only view.
	IncludesGroundTruth *bool `json:"includes_ground_truth,omitempty"`
}

// DebugInfo carries diagnostics about how a file's diff was derived.
type DebugInfo struct {
	BuggyLinesCount    int    `json:"buggy_lines_count"`
	FixedLinesCount    int    `json:"fixed_lines_count"`
	OriginalDiffSample string `json:"original_diff_sample"`
	InvertedDiffSample string `json:"inverted_diff_sample"`
}

// File is one evaluation unit of the dataset.
type File struct {
	FilePath     string              `json:"file_path"`
	FileContent  string              `json:"file_content"`
	DiffContent  string              `json:"diff_content"`
	GroundTruth  *review.GroundTruth `json:"ground_truth,omitempty"`
	TestScenario string              `json:"test_scenario"`
	DebugInfo    DebugInfo           `json:"debug_info"`
}

// Bug groups the files of one registry bug.
type Bug struct {
	BugID          string `json:"bug_id"`
	Project        string `json:"project"`
	BugCategory    string `json:"bug_category"`
	BugfixPatterns string `json:"bugfix_patterns"`
	Files          []File `json:"files"`
}

// Dataset is the canonical dataset document.
type Dataset struct {
	Metadata Metadata `json:"metadata"`
	Bugs     []Bug    `json:"bugs"`
}

// FileCount returns the number of files across all bugs.
func (d *Dataset) FileCount() int {
	n := 0
	for _, b := range d.Bugs {
		n += len(b.Files)
	}
	return n
}

// Clone returns a deep copy of d. No slice, map or pointer is shared.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	c := &Dataset{Metadata: d.Metadata.clone()}
	if d.Bugs != nil {
		c.Bugs = make([]Bug, len(d.Bugs))
		for i, b := range d.Bugs {
			c.Bugs[i] = b
			if b.Files != nil {
				c.Bugs[i].Files = make([]File, len(b.Files))
				for j, f := range b.Files {
					f.GroundTruth = f.GroundTruth.Clone()
					c.Bugs[i].Files[j] = f
				}
			}
		}
	}
	return c
}

func (m Metadata) clone() Metadata {
	c := m
	if m.ConversionStats != nil {
		c.ConversionStats = make(map[string]int, len(m.ConversionStats))
		for k, v := range m.ConversionStats {
			c.ConversionStats[k] = v
		}
	}
	if m.ProjectsConverted != nil {
		c.ProjectsConverted = append([]string(nil), m.ProjectsConverted...)
	}
	if m.IncludesGroundTruth != nil {
		v := *m.IncludesGroundTruth
		c.IncludesGroundTruth = &v
	}
	return c
}

// GroundTruthEntry pairs a file with its expected review.
type GroundTruthEntry struct {
	BugID       string             `json:"bug_id"`
	FilePath    string             `json:"file_path"`
	GroundTruth review.GroundTruth `json:"ground_truth"`
}

// GroundTruthOnly is the validation view: metadata plus every file that has
// at least one expected suggestion.
type GroundTruthOnly struct {
	Metadata     Metadata           `json:"metadata"`
	GroundTruths []GroundTruthEntry `json:"ground_truths"`
}
