package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/bugbench/internal/diff"
)

// ErrInvalidRecord is returned when a bug record or one of its file changes
// cannot be constructed.
var ErrInvalidRecord = errors.New("invalid bug record")

// FileChange is one source file that differs between the buggy and fixed
// versions of a bug.
type FileChange struct {
	Path          string
	BuggyContent  string
	FixedContent  string
	UnifiedDiff   string
	FormattedDiff string
}

// NewFileChange validates an extracted change and attaches its formatted
// diff.
func NewFileChange(c diff.Change) (FileChange, error) {
	if c.Path == "" {
		return FileChange{}, fmt.Errorf("%w: empty file path", ErrInvalidRecord)
	}
	if c.BuggyContent == c.FixedContent {
		return FileChange{}, fmt.Errorf("%w: %s: buggy and fixed content are identical", ErrInvalidRecord, c.Path)
	}
	if c.UnifiedDiff == "" {
		return FileChange{}, fmt.Errorf("%w: %s: empty diff", ErrInvalidRecord, c.Path)
	}
	return FileChange{
		Path:          c.Path,
		BuggyContent:  c.BuggyContent,
		FixedContent:  c.FixedContent,
		UnifiedDiff:   c.UnifiedDiff,
		FormattedDiff: diff.Format(c.UnifiedDiff, c.Path),
	}, nil
}

// BugRecord is a single registry bug together with its changed files.
type BugRecord struct {
	BugID          string
	Project        string
	Category       string
	BugfixPatterns string
	Files          []FileChange
}

// BugID returns the qualified id "<project>-<id>".
func BugID(project, id string) string {
	return project + "-" + id
}

// NewBugRecord builds a record from extracted changes. Every change is
// validated; a record with no files is rejected.
func NewBugRecord(project, id, category, patterns string, changes []diff.Change) (BugRecord, error) {
	if strings.TrimSpace(project) == "" || strings.TrimSpace(id) == "" {
		return BugRecord{}, fmt.Errorf("%w: project and id are required", ErrInvalidRecord)
	}
	if len(changes) == 0 {
		return BugRecord{}, fmt.Errorf("%w: %s has no file changes", ErrInvalidRecord, BugID(project, id))
	}
	files := make([]FileChange, 0, len(changes))
	for _, c := range changes {
		fc, err := NewFileChange(c)
		if err != nil {
			return BugRecord{}, err
		}
		files = append(files, fc)
	}
	return BugRecord{
		BugID:          BugID(project, id),
		Project:        project,
		Category:       category,
		BugfixPatterns: patterns,
		Files:          files,
	}, nil
}
