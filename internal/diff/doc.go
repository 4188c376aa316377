// Package diff derives the line-numbered diff representation used by the
// dataset from a pair of file trees.
//
// [Extract] walks the fixed tree, skips test files, and diffs each source
// file from its fixed version to its buggy version. The direction is
// deliberate: the resulting "+" lines read as a bug being introduced.
// [Format] turns a unified diff into per-hunk "__new hunk__" and
// "__old hunk__" sections, numbering new-section lines from 1 in every hunk.
package diff
