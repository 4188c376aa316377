// Package review defines the review suggestion format shared by ground truth
// and model predictions, renders the review prompt, and parses model replies.
//
// The eight canonical labels are the only values a suggestion may carry.
// [BuildPrompt] fills a fixed instruction template with a file's content and
// its formatted diff. [ParseResponse] pulls the first fenced JSON block (or the
// raw text) out of a reply and decodes it into a [GroundTruth].
package review
