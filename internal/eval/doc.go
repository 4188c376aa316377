// Package eval runs a model over a dataset and scores its answers.
//
// Each (bug, file) unit gets one prompt and one backend call. The first
// predicted suggestion is compared to the first expected one by exact label
// equality; failures are recorded per unit and surface as the error rate
// rather than aborting the run.
package eval
