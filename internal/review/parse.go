package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParseResponse is returned when a model reply does not contain a JSON
// review object.
var ErrParseResponse = errors.New("failed to parse JSON response")

const fence = "```"

// ParseResponse extracts the review object from a model's free-text reply.
// The returned string is the candidate text that was handed to the JSON
// decoder; on failure it is kept for diagnostics.
func ParseResponse(raw string) (*GroundTruth, string, error) {
	candidate := ExtractJSON(raw)
	if candidate == "" {
		return nil, candidate, fmt.Errorf("%w: empty response", ErrParseResponse)
	}

	// null, {} and non-objects carry no review.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return nil, candidate, fmt.Errorf("%w: %v", ErrParseResponse, err)
	}
	if len(fields) == 0 {
		return nil, candidate, fmt.Errorf("%w: no review object", ErrParseResponse)
	}

	var out GroundTruth
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return nil, candidate, fmt.Errorf("%w: %v", ErrParseResponse, err)
	}
	return &out, candidate, nil
}

// ExtractJSON returns the body of the first fenced code block in raw,
// preferring a json-tagged fence over an untagged one. Without a fence the
// trimmed raw text is returned.
func ExtractJSON(raw string) string {
	if start, ok := findJSONFence(raw); ok {
		return fenceBody(raw[start:])
	}

	idx := strings.Index(raw, fence)
	if idx < 0 {
		return strings.TrimSpace(raw)
	}
	body := raw[idx+len(fence):]

	// Drop an info string such as "javascript" on its own line.
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		first := strings.TrimSpace(body[:nl])
		if first != "" && !strings.ContainsAny(first, "{[") {
			body = body[nl+1:]
		}
	}
	return fenceBody(body)
}

// findJSONFence returns the offset just past the first ```json marker.
func findJSONFence(raw string) (int, bool) {
	const tag = "json"
	offset := 0
	for {
		idx := strings.Index(raw[offset:], fence)
		if idx < 0 {
			return 0, false
		}
		start := offset + idx + len(fence)
		if len(raw)-start >= len(tag) && strings.EqualFold(raw[start:start+len(tag)], tag) {
			return start + len(tag), true
		}
		offset = start
	}
}

// fenceBody returns text up to the next closing fence, or all of it when the
// fence is never closed.
func fenceBody(body string) string {
	if end := strings.Index(body, fence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
