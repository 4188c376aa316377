package diff

import (
	"fmt"
	"strings"
)

// Format renders a unified diff as a file header followed by, per hunk, the
// raw range marker, a numbered "__new hunk__" section and an untagged
// "__old hunk__" section. New-section numbering restarts at 1 in every hunk
// and advances on added and context lines.
func Format(unified, path string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## file: '%s'\n\n", path)

	for _, h := range ParseHunks(unified) {
		b.WriteString(h.Header)
		b.WriteString("\n")
		if len(h.Lines) > 0 {
			writeHunk(&b, h.Lines)
		}
	}
	return b.String()
}

func writeHunk(b *strings.Builder, lines []Line) {
	var newLines, oldLines []string
	n := 1
	for _, l := range lines {
		switch l.Kind {
		case Added:
			newLines = append(newLines, fmt.Sprintf("%d %s", n, l.Raw()))
			n++
		case Removed:
			oldLines = append(oldLines, l.Raw())
		case Context:
			newLines = append(newLines, fmt.Sprintf("%d %s", n, l.Raw()))
			oldLines = append(oldLines, l.Raw())
			n++
		}
	}

	b.WriteString("__new hunk__\n")
	if len(newLines) > 0 {
		b.WriteString(strings.Join(newLines, "\n"))
		b.WriteString("\n")
	}
	b.WriteString("__old hunk__\n")
	if len(oldLines) > 0 {
		b.WriteString(strings.Join(oldLines, "\n"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
