// Package cache stores raw model replies so that repeated evaluation runs
// over the same dataset do not pay for the same call twice.
//
// Entries are keyed by a SHA-256 hash of the provider name, model and the
// rendered prompt. Each entry is a msgpack file holding the reply, a
// creation timestamp and a TTL in seconds; a bounded LRU keeps recently used
// entries in memory. Expired entries are skipped on read and removed by
// Clear.
//
// The default directory is $XDG_CACHE_HOME/bugbench (or the OS-appropriate
// equivalent). Prompts have already been through secret redaction when it
// is enabled.
package cache
