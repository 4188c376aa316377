// Package redact removes secrets from file content and diffs before they are
// sent to any model provider.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, PEM private keys, AWS credentials, bearer tokens, connection strings
// with inline passwords, and provider tokens (Anthropic, OpenAI, GitHub,
// Slack, npm). Replacement keeps the line count of the input intact, so the
// line numbers quoted in a formatted diff stay valid.
//
// Path-based redaction is also supported: files whose paths match configured
// glob patterns have their entire content replaced with [REDACTED] rather than
// being scanned.
package redact
