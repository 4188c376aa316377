package groundtruth

import (
	"strings"

	"github.com/dshills/bugbench/internal/review"
)

// Mapping is the label and English description derived from a bug category.
type Mapping struct {
	Label       review.Label
	Description string
}

const genericDescription = "General bug fix"

// categoryRules is checked in order; the first substring hit wins.
var categoryRules = []struct {
	match string
	label review.Label
}{
	{"incorrect feature implementation", review.LabelPotentialIssues},
	{"incomplete feature implementation", review.LabelPotentialIssues},
	{"incorrect data processing", review.LabelPotentialIssues},
	{"configuration processing", review.LabelMaintainability},
	{"error handling", review.LabelErrorHandling},
	{"security", review.LabelSecurity},
	{"performance", review.LabelPerformanceAndOptimization},
}

var keywordRules = []struct {
	keywords []string
	label    review.Label
	prefix   string
}{
	{[]string{"error", "exception"}, review.LabelErrorHandling, "Error handling"},
	{[]string{"security", "vulnerability"}, review.LabelSecurity, "Security fix"},
	{[]string{"performance", "optimization"}, review.LabelPerformanceAndOptimization, "Optimization"},
}

// MapCategory maps free-text bug taxonomy onto a review label. It never
// fails: unknown categories fall through to potential_issues.
func MapCategory(category string) Mapping {
	if strings.TrimSpace(category) == "" {
		return Mapping{Label: review.LabelPotentialIssues, Description: genericDescription}
	}
	lower := strings.ToLower(category)

	for _, r := range categoryRules {
		if strings.Contains(lower, r.match) {
			return Mapping{Label: r.label, Description: "Fix: " + category}
		}
	}
	for _, r := range keywordRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return Mapping{Label: r.label, Description: r.prefix + ": " + category}
			}
		}
	}
	return Mapping{Label: review.LabelPotentialIssues, Description: "Fix: " + category}
}
