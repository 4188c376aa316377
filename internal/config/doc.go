// Package config loads and merges bugbench configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (BUGBENCH_MODEL, BUGBENCH_BUGSJS_PATH, etc.)
//  3. A .env file in the working directory, loaded into the environment
//  4. Config file ($XDG_CONFIG_HOME/bugbench/config.json)
//  5. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Init] to write a default config
// file, and [SetField] to update a single key. Provider credentials such as
// OPENAI_API_KEY are read from the environment by the providers package and
// are never stored in the config file.
package config
