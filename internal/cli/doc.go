// Package cli wires together the Cobra command tree for the bugbench binary.
//
// It defines the root command and its subcommands (convert, evaluate,
// providers, config, cache, version), binds flags onto config overrides and
// maps failures to deterministic exit codes.
package cli
