// Package normalize turns free-form generation-service text into JSON of a
// known container shape, repairing the usual LLM defects on the way.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
)

// Container is the opening bracket of the JSON value a stage expects.
type Container byte

const (
	Array  Container = '['
	Object Container = '{'
)

func (c Container) closer() byte {
	if c == Array {
		return ']'
	}
	return '}'
}

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\r?\n?[ \t]*```$")

	errNoStructure = errors.New("no JSON structure found")
)

// StripFences removes one leading and one trailing triple-backtick marker.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = leadingFence.ReplaceAllString(s, "")
	}
	if strings.HasSuffix(s, "```") {
		s = trailingFence.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

// RemoveTrailingCommas drops commas that directly precede a closing bracket,
// ignoring anything inside string literals.
func RemoveTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
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
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Extract returns the first JSON array or object recovered from raw:
// fences stripped, then a direct parse, then the outermost slice delimited by
// want's brackets, each retried once with trailing commas removed.
func Extract(op, raw string, want Container) (json.RawMessage, error) {
	text := StripFences(raw)
	candidates := []string{text}
	if slice, ok := bracketSlice(text, want); ok && slice != text {
		candidates = append(candidates, slice)
	}
	for _, c := range candidates {
		if v, ok := parseContainer(c); ok {
			return v, nil
		}
	}
	for _, c := range candidates {
		if v, ok := parseContainer(RemoveTrailingCommas(c)); ok {
			return v, nil
		}
	}
	return nil, pipeline.MalformedOutput(op, raw, errNoStructure)
}

func bracketSlice(s string, want Container) (string, bool) {
	start := strings.IndexByte(s, byte(want))
	end := strings.LastIndexByte(s, want.closer())
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func parseContainer(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if s == "" || (s[0] != '[' && s[0] != '{') {
		return nil, false
	}
	if !json.Valid([]byte(s)) {
		return nil, false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil, false
	}
	return json.RawMessage(buf.Bytes()), true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}
