// Package output formats evaluation reports for display or machine
// consumption.
//
// Four formats are supported:
//   - text: human-readable terminal summary (default)
//   - json: full structured report
//   - markdown: metrics table, distributions and failed units
//   - yaml: full structured report
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and an [*eval.Report]. [WriteReport]
// handles destination selection and [WriteJSONFile] persists the report and
// comparison artifacts.
package output
