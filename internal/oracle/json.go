package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when a response holds no JSON value at all.
var ErrNoJSON = errors.New("no JSON found in response")

// Repairs for the syntax mistakes models make most often.
var (
	// "value"\n"key": -> "value", "key":
	missingCommaBeforeKey = regexp.MustCompile(`(")\s*\n\s*("[\w][^"]*"\s*:)`)

	// 12\n"key": -> 12, "key":
	missingCommaAfterScalar = regexp.MustCompile(`(\d|true|false|null)\s*\n\s*("[\w][^"]*"\s*:)`)

	// } "key" -> }, "key"
	missingCommaAfterClose = regexp.MustCompile(`([}\]])\s*\n?\s*("[\w])`)

	// ,} -> }
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)

	// {'key': -> {"key":
	singleQuotedKey = regexp.MustCompile(`([{,]\s*)'(\w+)'(\s*:)`)

	// <think>...</think> blocks emitted by local reasoning models
	thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)
)

// ParseJSON extracts the first JSON value from a model response and decodes
// it into T. Markdown fences, leading prose and trailing text are ignored.
// When strict decoding fails, common syntax mistakes are repaired and
// decoding is retried once.
func ParseJSON[T any](response string) (T, error) {
	var out T

	body := stripFences(thinkBlock.ReplaceAllString(response, ""))
	if body == "" {
		return out, ErrNoJSON
	}

	// A JSON string that itself contains JSON.
	if strings.HasPrefix(body, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(body), &inner); err == nil {
			return ParseJSON[T](inner)
		}
	}

	start := strings.IndexAny(body, "{[")
	if start == -1 {
		return out, ErrNoJSON
	}
	body = body[start:]

	err := json.NewDecoder(strings.NewReader(body)).Decode(&out)
	if err == nil {
		return out, nil
	}

	if fixed := repair(body); fixed != body {
		var retry T
		if err2 := json.NewDecoder(strings.NewReader(fixed)).Decode(&retry); err2 == nil {
			return retry, nil
		}
	}
	return out, fmt.Errorf("parse JSON: %w", err)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i != -1 {
		rest := s[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j != -1 {
			rest = rest[:j]
		}
		s = rest
	}
	return strings.TrimSpace(s)
}

func repair(s string) string {
	s = escapeControlChars(s)
	s = missingCommaBeforeKey.ReplaceAllString(s, `$1, $2`)
	s = missingCommaAfterScalar.ReplaceAllString(s, `$1, $2`)
	s = missingCommaAfterClose.ReplaceAllString(s, `$1, $2`)
	s = trailingComma.ReplaceAllString(s, `$1`)
	s = singleQuotedKey.ReplaceAllString(s, `$1"$2"$3`)
	return closeTruncated(s)
}

// escapeControlChars escapes raw control characters inside string literals.
func escapeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString && c < 0x20:
			switch c {
			case '\n':
				b.WriteString(`\n`)
			case '\t':
				b.WriteString(`\t`)
			case '\r':
				b.WriteString(`\r`)
			default:
				fmt.Fprintf(&b, `\u%04x`, c)
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// closeTruncated balances an unterminated string and any open brackets,
// closing them in reverse nesting order.
func closeTruncated(s string) string {
	var stack []byte
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if inString {
		s += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		s += string(stack[i])
	}
	return s
}
