// Package groundtruth synthesizes the expected review suggestion for a
// changed file from its diff and the bug's taxonomy category.
//
// Because diffs run from fixed to buggy, ExistingCode carries the fixed code
// and ImprovedCode carries the buggy code. Consumers of the dataset rely on
// that layout, so it is kept.
package groundtruth
