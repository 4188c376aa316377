// Package bugsjs reads the BugsJS benchmark and converts its bugs into a
// review dataset.
//
// Each project ships a registry at Projects/<P>/<P>_bugs.csv listing bug ids
// with their category and fix patterns. Source trees are materialized by the
// framework's main.py, once for the buggy revision and once for the fixed
// one. [Converter] checks out both, diffs them with the diff package, builds
// ground truth with the groundtruth package and assembles the result with
// the dataset package.
//
// Failures are scoped: a failed checkout or a bug with no modified source
// files skips that bug, an unreadable registry skips that project, and only
// bad options stop the run before it starts.
package bugsjs
