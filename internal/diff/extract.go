package diff

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ErrNoModifiedFiles is returned when two trees have no differing source
// files once test files are excluded.
var ErrNoModifiedFiles = errors.New("no modified source files")

// DefaultContextLines is the number of unchanged lines around each hunk.
const DefaultContextLines = 3

var testIndicators = []string{"test", "spec", "__test__", ".test.", ".spec."}

// ExtractOptions controls which files are compared.
type ExtractOptions struct {
	// Extensions lists the file extensions to compare, e.g. ".js".
	Extensions []string
	Logger     *slog.Logger
}

// Change is one source file that differs between the buggy and fixed trees.
type Change struct {
	Path         string
	BuggyContent string
	FixedContent string
	UnifiedDiff  string
}

// IsTestPath reports whether a relative path looks like test code.
func IsTestPath(rel string) bool {
	lower := strings.ToLower(rel)
	for _, ind := range testIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// Extract compares every non-test source file of fixedRoot with its
// counterpart under buggyRoot.
//
// The diff runs from the fixed version to the buggy version, so added lines
// are the bug being introduced and removed lines are the fix.
func Extract(buggyRoot, fixedRoot string, opts ExtractOptions) ([]Change, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	for _, root := range []string{buggyRoot, fixedRoot} {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", root)
		}
	}

	paths, err := listSources(fixedRoot, opts.Extensions)
	if err != nil {
		return nil, err
	}
	logger.Debug("source files found", "root", fixedRoot, "count", len(paths))

	var changes []Change
	for _, rel := range paths {
		buggyPath := filepath.Join(buggyRoot, filepath.FromSlash(rel))
		if _, err := os.Stat(buggyPath); err != nil {
			continue
		}
		fixed, err := ReadText(filepath.Join(fixedRoot, filepath.FromSlash(rel)))
		if err != nil {
			logger.Warn("skipping unreadable file", "file", rel, "error", err)
			continue
		}
		buggy, err := ReadText(buggyPath)
		if err != nil {
			logger.Warn("skipping unreadable file", "file", rel, "error", err)
			continue
		}
		if buggy == fixed {
			continue
		}

		unified, err := Unified(fixed, buggy, rel)
		if err != nil {
			logger.Warn("diff failed", "file", rel, "error", err)
			continue
		}
		if len(ParseHunks(unified)) == 0 {
			continue
		}
		changes = append(changes, Change{
			Path:         rel,
			BuggyContent: buggy,
			FixedContent: fixed,
			UnifiedDiff:  unified,
		})
	}

	if len(changes) == 0 {
		return nil, ErrNoModifiedFiles
	}
	return changes, nil
}

// noEOL marks a final line that lacks its newline, so "x\n" and "x" compare
// as different lines. It is stripped from the rendered diff.
const noEOL = "\uffff"

// Unified returns the unified diff from one text to another, labelled
// original/<path> and modified/<path>. A change to the trailing newline
// alone shows up as the last line removed and re-added.
func Unified(from, to, path string) (string, error) {
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        terminate(SplitLines(from)),
		B:        terminate(SplitLines(to)),
		FromFile: "original/" + path,
		ToFile:   "modified/" + path,
		Context:  DefaultContextLines,
	})
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(out, noEOL+"\n", "\n"), nil
}

// terminate ends the final line with a newline so every diff line stays on
// its own row, tagging it with noEOL when the newline was missing.
func terminate(lines []string) []string {
	if n := len(lines); n > 0 && !strings.HasSuffix(lines[n-1], "\n") {
		lines[n-1] += noEOL + "\n"
	}
	return lines
}

func listSources(root string, exts []string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !hasExtension(path, exts) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if IsTestPath(rel) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return out, nil
}

func hasExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
