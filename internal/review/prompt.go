package review

import (
	"strings"
)

const (
	fileContentPlaceholder = "{{FILE_CONTENT}}"
	diffContentPlaceholder = "{{DIFF_CONTENT}}"
)

const promptTemplate = `# Code Review Task

## Mission
You are a senior engineer reviewing a pull request. Analyze the change in depth and report concrete, actionable problems in the code it introduces.

## Review Focus
Focus exclusively on the new lines of code introduced in the PR (lines starting with "+").
Every suggestion must fall under exactly one of the following labels.
These eight strings are the only valid values. Never invent new labels.

- 'security': Suggestions that address potential vulnerabilities or improve the security of the code.
- 'error_handling': Suggestions to improve the way errors and exceptions are handled.
- 'refactoring': Suggestions to restructure the code for better readability, maintainability, or modularity.
- 'performance_and_optimization': Suggestions that directly impact the speed or efficiency of the code.
- 'maintainability': Suggestions that make the code easier to maintain and extend in the future.
- 'potential_issues': Suggestions that identify clear bugs or demonstrable logical errors in the code. Only report issues whose evidence is directly present in the added lines. Do not speculate about parts of the system that are not visible in the diff.
- 'code_style': Suggestions to improve consistency and adherence to coding standards.
- 'documentation_and_comments': Suggestions related to improving code documentation.

Prioritize quality over quantity. Pay special attention to changes that could cause runtime errors or unexpected behavior in production. Skip trivial formatting issues.

## Analysis Guidelines
- Base every suggestion strictly on the code shown in the diff. If you cannot confirm an issue from the diff, do not report it.
- Only suggest changes for lines marked with '+'. Lines starting with '-' or ' ' are not part of the new code.
- Never reference a line that does not appear with a '+' prefix in the diff.
- Never suggest changes that break the code or introduce regressions.
- Keep suggestions concise: one main idea per suggestion, simple and direct language.
- If no suggestion applies, return an empty codeSuggestions array.

## Code Under Review

Complete File Content:
{{FILE_CONTENT}}

Code Diff (PR Changes):
{{DIFF_CONTENT}}

## Understanding the Diff Format
- The diff is split into hunks. Each hunk starts with its "@@" range marker, followed by a __new hunk__ section and an __old hunk__ section.
- The __new hunk__ section holds the code as it is after the PR. The __old hunk__ section holds the code that was removed.
- Lines are prefixed with '+' (added), '-' (removed) or ' ' (unchanged).
- Every line of a __new hunk__ section begins with its line number as encoded in this diff (for example "3 +const x = 1;").
- relevantLinesStart and relevantLinesEnd must use exactly those numbers.
- If several consecutive '+' lines form one issue, use the first and last of their numbers.

## Line Number Rules
- relevantLinesStart is the first '+' line that contains the issue.
- relevantLinesEnd is the last '+' line that belongs to the same issue.
- relevantLinesStart must be less than or equal to relevantLinesEnd.
- Never use a number outside the __new hunk__ range. If you cannot determine the numbers, drop the suggestion.

## Output Format
Return ONLY a single JSON object with this structure:

` + "```json" + `
{
    "overallSummary": "Summary of the changes made in the PR",
    "codeSuggestions": [
        {
            "relevantFile": "path/to/file",
            "language": "programming_language",
            "suggestionContent": "Detailed suggestion",
            "existingCode": "Relevant new code from the PR",
            "improvedCode": "Improved proposal",
            "oneSentenceSummary": "Concise summary of the suggestion",
            "relevantLinesStart": 1,
            "relevantLinesEnd": 1,
            "label": "one of the eight labels"
        }
    ]
}
` + "```" + `

## Final Requirements
- Return only the JSON object, with valid JSON syntax.
- Avoid comments in improvedCode unless necessary.
- codeSuggestions may be empty when no meaningful issue exists. There is no limit on the number of suggestions.
`

// BuildPrompt renders the review instruction for one file. Substitution is
// literal; braces and format verbs in the inputs are left untouched.
func BuildPrompt(fileContent, diffContent string) string {
	r := strings.NewReplacer(
		fileContentPlaceholder, fileContent,
		diffContentPlaceholder, diffContent,
	)
	return r.Replace(promptTemplate)
}

// PromptTemplate returns the raw instruction template.
func PromptTemplate() string {
	return promptTemplate
}
