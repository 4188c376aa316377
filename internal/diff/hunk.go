package diff

import (
	"regexp"
	"strconv"
	"strings"
)

// LineKind classifies a line inside a hunk body.
type LineKind byte

const (
	Context LineKind = ' '
	Added   LineKind = '+'
	Removed LineKind = '-'
)

// Line is a single hunk body line with its marker stripped.
type Line struct {
	Kind LineKind
	Text string
}

// Raw returns the line with its marker restored.
func (l Line) Raw() string {
	return string(rune(l.Kind)) + l.Text
}

// Hunk is a contiguous diff segment introduced by an "@@" range marker.
type Hunk struct {
	Header      string
	OldStart    int
	NewStart    int
	HasNewStart bool
	Lines       []Line
}

var (
	newStartRe = regexp.MustCompile(`\+(\d+)`)
	oldStartRe = regexp.MustCompile(`-(\d+)`)
)

// ParseHunks splits a unified diff into hunks. File headers before the first
// marker and lines without a diff marker are ignored.
func ParseHunks(unified string) []Hunk {
	var hunks []Hunk
	var cur *Hunk

	for _, line := range strings.Split(unified, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(line, "@@") {
			hunks = append(hunks, parseHeader(line))
			cur = &hunks[len(hunks)-1]
			continue
		}
		if cur == nil || line == "" {
			continue
		}
		switch LineKind(line[0]) {
		case Added, Removed, Context:
			cur.Lines = append(cur.Lines, Line{Kind: LineKind(line[0]), Text: line[1:]})
		}
	}
	return hunks
}

func parseHeader(header string) Hunk {
	h := Hunk{Header: header}
	if m := newStartRe.FindStringSubmatch(header); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			h.NewStart = n
			h.HasNewStart = true
		}
	}
	if m := oldStartRe.FindStringSubmatch(header); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			h.OldStart = n
		}
	}
	return h
}
