package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyInput is returned when there is no text to parse at all
var ErrEmptyInput = errors.New("empty input")

var (
	fencedJSONBlock   = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	trailingComma     = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKey       = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*:)`)
	controlCharacters = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseAIJSON decodes JSON produced by a language model into target.
// Model output is often wrapped in a markdown fence, surrounded by prose, or
// carries small syntax slips (trailing commas, bare keys, single quotes), so
// each of those shapes is tried in turn before giving up.
func ParseAIJSON(input string, target interface{}) error {
	input = strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if input == "" {
		return ErrEmptyInput
	}

	candidates := []func(string) string{
		func(s string) string { return s },
		extractFromMarkdown,
		extractJSONFromText,
		cleanAndFixJSON,
	}

	for _, candidate := range candidates {
		text := candidate(input)
		if text == "" {
			continue
		}
		if err := json.Unmarshal([]byte(text), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// extractFromMarkdown returns the body of the first ``` or ```json fence that looks like JSON
func extractFromMarkdown(input string) string {
	matches := fencedJSONBlock.FindStringSubmatch(input)
	if len(matches) < 2 {
		return ""
	}
	body := strings.TrimSpace(matches[1])
	if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
		return body
	}
	return ""
}

// extractJSONFromText finds the first balanced object (or array) inside prose
func extractJSONFromText(input string) string {
	if start := strings.Index(input, "{"); start >= 0 {
		if extracted := extractBalancedBraces(input[start:], '{', '}'); extracted != "" {
			return extracted
		}
	}
	if start := strings.Index(input, "["); start >= 0 {
		return extractBalancedBraces(input[start:], '[', ']')
	}
	return ""
}

// extractBalancedBraces returns the prefix of input up to the bracket that
// closes the first open bracket, ignoring brackets inside string literals.
func extractBalancedBraces(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false
	start := -1

	for i, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			if depth == 0 {
				start = i
			}
			depth++
		case ch == close && depth > 0:
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// cleanAndFixJSON repairs the syntax slips models make most often
func cleanAndFixJSON(input string) string {
	s := extractJSONFromText(input)
	if s == "" {
		s = input
	}
	s = trailingComma.ReplaceAllString(s, "$1")
	s = unquotedKey.ReplaceAllString(s, `$1"$2"$3`)
	s = fixSingleQuotes(s)
	return controlCharacters.ReplaceAllString(s, "")
}

// fixSingleQuotes turns single-quoted JSON strings into double-quoted ones.
// Apostrophes inside double-quoted strings and inside words are left alone.
func fixSingleQuotes(input string) string {
	var out strings.Builder
	inDouble := false
	inSingle := false
	escape := false
	var prev rune

	for _, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"' && !inSingle:
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			if inSingle {
				inSingle = false
				ch = '"'
			} else if prev == 0 || strings.ContainsRune(":,[{ ", prev) {
				inSingle = true
				ch = '"'
			}
		}
		out.WriteRune(ch)
		if ch != ' ' || prev == 0 {
			prev = ch
		}
	}

	return out.String()
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
