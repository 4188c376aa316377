package output

import (
	"fmt"
	"io"

	"github.com/dshills/bugbench/internal/eval"
)

// MarkdownWriter outputs a markdown summary with a metrics table, the label
// distributions and the failed units.
type MarkdownWriter struct{}

func (md *MarkdownWriter) Write(w io.Writer, report *eval.Report) error {
	ew := &errWriter{w: w}
	m := report.Metrics

	ew.printf("## Evaluation: %s\n\n", m.Model)
	if report.Metadata.Dataset != "" {
		ew.printf("Dataset: `%s`", report.Metadata.Dataset)
		if report.Metadata.EvaluationDate != "" {
			ew.printf(" | %s", report.Metadata.EvaluationDate)
		}
		ew.printf("\n\n")
	}

	ew.printf("| Metric | Value |\n")
	ew.printf("|--------|-------|\n")
	ew.printf("| Files evaluated | %d/%d |\n", m.ValidFiles, m.TotalFiles)
	ew.printf("| Bug detection rate | %s |\n", percent(m.BugDetectionRate))
	ew.printf("| Label accuracy | %s |\n", percent(m.LabelAccuracy))
	ew.printf("| Bugs detected | %d |\n", m.BugsDetected)
	ew.printf("| Correct labels | %d |\n", m.CorrectLabels)
	ew.printf("| Error rate | %s |\n\n", percent(m.ErrorRate))

	if m.Error != "" {
		ew.printf("> **%s**\n\n", m.Error)
	}

	mdDistribution(ew, "Ground truth distribution", m.GroundTruthDistribution)
	mdDistribution(ew, "Predicted distribution", m.PredictedDistribution)

	var failed []eval.Detail
	for _, d := range report.DetailedResults {
		if d.Error != nil {
			failed = append(failed, d)
		}
	}
	if len(failed) > 0 {
		ew.printf("<details>\n<summary>Failed units (%d)</summary>\n\n", len(failed))
		ew.printf("| Bug | File | Error |\n")
		ew.printf("|-----|------|-------|\n")
		for _, d := range failed {
			ew.printf("| %s | `%s` | %s |\n", d.BugID, d.FilePath, *d.Error)
		}
		ew.printf("\n</details>\n")
	}
	return ew.err
}

func mdDistribution(ew *errWriter, title string, dist map[string]int) {
	ew.printf("### %s\n\n", title)
	if len(dist) == 0 {
		ew.printf("_none_\n\n")
		return
	}
	ew.printf("| Label | Count |\n")
	ew.printf("|-------|-------|\n")
	for _, label := range sortedLabels(dist) {
		ew.printf("| `%s` | %d |\n", label, dist[label])
	}
	ew.printf("\n")
}

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}
