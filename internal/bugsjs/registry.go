package bugsjs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/bugbench/internal/diff"
)

// ErrRegistry is returned when a project's bug registry cannot be read.
var ErrRegistry = errors.New("bug registry unavailable")

// Projects are the BugsJS subject systems.
var Projects = []string{
	"Bower", "Eslint", "Express", "Hessian.js", "Hexo",
	"Karma", "Mongoose", "Node-redis", "Pencilblue", "Shields",
}

const (
	colID       = "ID"
	colCategory = "Bug category"
	colPatterns = "Bugfix patterns"
)

// Bug is one row of a project registry.
type Bug struct {
	ID       string
	Category string
	Patterns string
}

// IsKnownProject reports whether name is one of Projects. Matching is exact.
func IsKnownProject(name string) bool {
	for _, p := range Projects {
		if p == name {
			return true
		}
	}
	return false
}

// RegistryPath returns Projects/<P>/<P>_bugs.csv under root.
func RegistryPath(root, project string) string {
	return filepath.Join(root, "Projects", project, project+"_bugs.csv")
}

// LoadRegistry reads the semicolon-separated registry of one project. Rows
// without an ID are skipped.
func LoadRegistry(root, project string) ([]Bug, error) {
	path := RegistryPath(root, project)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRegistry, project, err)
	}
	bugs, err := parseRegistry(diff.DecodeText(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRegistry, path, err)
	}
	return bugs, nil
}

func parseRegistry(text string) ([]Bug, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = ';'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("empty registry")
		}
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, c := range []string{colID, colCategory, colPatterns} {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	field := func(rec []string, col string) string {
		i := cols[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var bugs []Bug
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		id := field(rec, colID)
		if id == "" {
			continue
		}
		bugs = append(bugs, Bug{
			ID:       id,
			Category: field(rec, colCategory),
			Patterns: field(rec, colPatterns),
		})
	}
	return bugs, nil
}
