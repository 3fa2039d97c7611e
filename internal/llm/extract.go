package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when a response contains no JSON of the expected shape.
var ErrNoJSON = errors.New("no json found in response")

var fenceRegex = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")

// StripCodeFences removes markdown code-fence lines (``` or ```json).
func StripCodeFences(s string) string {
	s = fenceRegex.ReplaceAllString(s, "")
	// Inline fences such as ```json [..] ``` on a single line.
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// sliceBetween returns the text from the first open to the last close byte, inclusive.
func sliceBetween(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// DecodeJSONArray extracts and decodes a JSON array from free model text:
// fence-strip, slice between the first '[' and last ']', then decode.
func DecodeJSONArray[T any](raw string) ([]T, error) {
	body, ok := sliceBetween(StripCodeFences(raw), '[', ']')
	if !ok {
		return nil, ErrNoJSON
	}
	var out []T
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("decode json array: %w", err)
	}
	return out, nil
}

// DecodeJSONObject extracts and decodes a JSON object from free model text.
func DecodeJSONObject[T any](raw string) (T, error) {
	var out T
	body, ok := sliceBetween(StripCodeFences(raw), '{', '}')
	if !ok {
		return out, ErrNoJSON
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return out, fmt.Errorf("decode json object: %w", err)
	}
	return out, nil
}

// ParseJSONArray decodes a JSON array or returns fallback. It never fails.
func ParseJSONArray[T any](raw string, fallback []T) []T {
	out, err := DecodeJSONArray[T](raw)
	if err != nil {
		slog.Debug("json array fallback", "error", err, "response_len", len(raw))
		return fallback
	}
	return out
}

// ParseJSONObject decodes a JSON object or returns fallback. It never fails.
func ParseJSONObject[T any](raw string, fallback T) T {
	out, err := DecodeJSONObject[T](raw)
	if err != nil {
		slog.Debug("json object fallback", "error", err, "response_len", len(raw))
		return fallback
	}
	return out
}
