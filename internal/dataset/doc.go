// Package dataset assembles converted bugs into the dataset document and
// its three persisted views: the full dataset, an input-only copy without
// ground truth, and a ground-truth-only validation file.
package dataset
