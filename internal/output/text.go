package output

import (
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/dshills/bugbench/internal/eval"
)

// TextWriter outputs a human-readable summary of the metrics. Color is
// used only when Color is set.
type TextWriter struct {
	Color bool
}

func (t *TextWriter) Write(w io.Writer, report *eval.Report) error {
	ew := &errWriter{w: w}
	m := report.Metrics

	heading := t.style(color.Bold)
	good := t.style(color.FgGreen)
	bad := t.style(color.FgRed)

	ew.printf("%s\n", heading.Sprintf("Evaluation Summary: %s", m.Model))
	if report.Metadata.Dataset != "" {
		ew.printf("Dataset: %s\n", report.Metadata.Dataset)
	}
	ew.println(strings.Repeat("─", 60))
	ew.printf("Files evaluated:    %d/%d\n", m.ValidFiles, m.TotalFiles)

	if m.Error != "" {
		ew.printf("%s\n", bad.Sprint(m.Error))
		ew.printf("Error rate:         %s\n", bad.Sprint(percent(m.ErrorRate)))
		return ew.err
	}

	ew.printf("Bug detection rate: %s\n", good.Sprint(percent(m.BugDetectionRate)))
	ew.printf("Label accuracy:     %s\n", good.Sprint(percent(m.LabelAccuracy)))
	ew.printf("Bugs detected:      %d\n", m.BugsDetected)
	ew.printf("Correct labels:     %d\n", m.CorrectLabels)
	errRate := percent(m.ErrorRate)
	if m.ErrorRate > 0 {
		errRate = bad.Sprint(errRate)
	}
	ew.printf("Error rate:         %s\n", errRate)

	writeDistribution(ew, heading.Sprint("Ground truth distribution"), m.GroundTruthDistribution)
	writeDistribution(ew, heading.Sprint("Predicted distribution"), m.PredictedDistribution)

	if report.Metadata.RunID != "" {
		ew.printf("\n%s\n", strings.Repeat("─", 60))
		ew.printf("Run %s at %s\n", report.Metadata.RunID, report.Metadata.EvaluationDate)
	}
	return ew.err
}

func (t *TextWriter) style(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if t.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func writeDistribution(ew *errWriter, title string, dist map[string]int) {
	ew.printf("\n%s\n", title)
	if len(dist) == 0 {
		ew.println("  (none)")
		return
	}
	for _, label := range sortedLabels(dist) {
		ew.printf("  %-30s %d\n", label, dist[label])
	}
}

// sortedLabels orders by count descending, then by name.
func sortedLabels(dist map[string]int) []string {
	labels := make([]string, 0, len(dist))
	for l := range dist {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		if dist[labels[i]] != dist[labels[j]] {
			return dist[labels[i]] > dist[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}
