package review

import (
	"strings"
	"testing"
)

func TestBuildPrompt_Substitution(t *testing.T) {
	file := "const a = 1;\n"
	diff := "## file: 'a.js'\n\n@@ -1 +1 @@\n__new hunk__\n1 +const a = 1;\n__old hunk__\n-const a = 2;\n"

	prompt := BuildPrompt(file, diff)

	if !strings.Contains(prompt, file) {
		t.Error("Prompt should contain the file content")
	}
	if !strings.Contains(prompt, diff) {
		t.Error("Prompt should contain the diff content")
	}
	if strings.Contains(prompt, fileContentPlaceholder) || strings.Contains(prompt, diffContentPlaceholder) {
		t.Error("Prompt should not contain unreplaced placeholders")
	}
}

func TestBuildPrompt_LiteralBracesAndVerbs(t *testing.T) {
	file := "function f() { return `${a}%d {x}`; }"
	prompt := BuildPrompt(file, "")
	if !strings.Contains(prompt, file) {
		t.Error("Braces and format verbs in file content should be kept verbatim")
	}
}

func TestBuildPrompt_PlaceholderInContentNotExpanded(t *testing.T) {
	// A file that happens to contain the diff placeholder must not receive the diff.
	prompt := BuildPrompt("x "+diffContentPlaceholder, "<<the-diff>>")
	if n := strings.Count(prompt, "<<the-diff>>"); n != 1 {
		t.Errorf("diff substituted %d times, want 1", n)
	}
	if !strings.Contains(prompt, "x "+diffContentPlaceholder) {
		t.Error("Placeholder text inside file content should be kept verbatim")
	}
}

func TestPromptTemplate_ListsAllLabels(t *testing.T) {
	tmpl := PromptTemplate()
	for _, l := range Labels() {
		if !strings.Contains(tmpl, "'"+string(l)+"'") {
			t.Errorf("Template should list label %q", l)
		}
	}
	for _, field := range []string{"overallSummary", "codeSuggestions", "relevantLinesStart", "relevantLinesEnd", "existingCode", "improvedCode", "label"} {
		if !strings.Contains(tmpl, `"`+field+`"`) {
			t.Errorf("Template output shape should include %q", field)
		}
	}
	if !strings.Contains(tmpl, "__new hunk__") {
		t.Error("Template should explain the __new hunk__ section")
	}
}
