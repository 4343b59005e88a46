package genai

import (
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
)

// Model output is a semi-structured text channel: the JSON we asked for may
// arrive bare, wrapped in a fenced code block, or surrounded by prose.
// DecodeLoose runs an ordered list of extraction strategies and stops at the
// first one that yields valid JSON for v. Total failure is a Parsing error.

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)```")

type extractStrategy func(text string) (string, bool)

var extractStrategies = []extractStrategy{
	extractDirect,
	extractFenced,
	extractBraced,
	extractBracketed,
}

// DecodeLoose decodes model output into v, tolerating markdown fences and
// surrounding prose. op names the remote operation for error reporting.
func DecodeLoose(op, text string, v any) error {
	var lastErr error
	for _, strategy := range extractStrategies {
		candidate, ok := strategy(text)
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), v); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no JSON payload found in response")
	}
	return NewError(KindParsing, op, lastErr)
}

func extractDirect(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

func extractFenced(text string) (string, bool) {
	matches := fencedBlockRe.FindStringSubmatch(text)
	if len(matches) < 2 {
		return "", false
	}
	return strings.TrimSpace(matches[1]), true
}

// extractBraced returns the widest brace-delimited span. Ordered before the
// bracket scan; a brace span that fails to unmarshal still lets a
// prose-wrapped array reach extractBracketed.
func extractBraced(text string) (string, bool) {
	return spanBetween(text, '{', '}')
}

// extractBracketed returns the widest bracket-delimited span.
func extractBracketed(text string) (string, bool) {
	return spanBetween(text, '[', ']')
}

func spanBetween(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
