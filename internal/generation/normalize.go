package generation

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ContentEnvelope is the parsed top-level object of a model response, before
// any shape validation.
type ContentEnvelope map[string]json.RawMessage

// fenceMarker matches a Markdown code fence with an optional language tag.
var fenceMarker = regexp.MustCompile("```[A-Za-z0-9_+-]*[ \t]*\r?\n?")

var errNotObject = errors.New("top-level JSON value is not an object")

// Normalize extracts and parses the JSON object carried by model text.
//
// Code fences are removed first. The candidate payload is the first balanced
// {...} object, found with a scanner that ignores braces inside JSON string
// literals. If that object does not parse, later balanced objects are tried so
// that a stray brace in leading prose does not hide the payload. Text with no
// '{' is parsed as a whole; an object that never closes falls back to the span
// from the first '{' to the last '}'.
//
// Failures are returned as *NormalizationError with Reason ParseFailed.
func Normalize(text string) (ContentEnvelope, error) {
	cleaned := stripFences(text)

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return parseCandidate(cleaned)
	}

	end, closed := matchBrace(cleaned, start)
	if !closed {
		if last := strings.LastIndexByte(cleaned, '}'); last > start {
			return parseCandidate(cleaned[start : last+1])
		}
		return parseCandidate(cleaned[start:])
	}

	env, firstErr := parseCandidate(cleaned[start : end+1])
	if firstErr == nil {
		return env, nil
	}

	for {
		next := strings.IndexByte(cleaned[end+1:], '{')
		if next < 0 {
			return nil, firstErr
		}
		start = end + 1 + next
		if end, closed = matchBrace(cleaned, start); !closed {
			return nil, firstErr
		}
		if env, err := parseCandidate(cleaned[start : end+1]); err == nil {
			return env, nil
		}
	}
}

func stripFences(text string) string {
	return strings.TrimSpace(fenceMarker.ReplaceAllString(text, ""))
}

// matchBrace returns the index of the '}' closing the '{' at start.
// Braces inside string literals, including escaped quotes, are skipped.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return -1, false
}

func parseCandidate(candidate string) (ContentEnvelope, error) {
	var env ContentEnvelope
	err := json.Unmarshal([]byte(candidate), &env)
	if err == nil && env == nil {
		// "null" decodes into a nil map without error.
		err = errNotObject
	}
	if err != nil {
		return nil, &NormalizationError{Reason: ParseFailed, Text: candidate, Err: err}
	}
	return env, nil
}
