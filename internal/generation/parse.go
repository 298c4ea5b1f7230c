package generation

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"

	"github.com/mohammad-safakhou/localseo/internal/helpers"
)

var (
	fencePattern  = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
	bulletPattern = regexp.MustCompile(`^\s*(?:\d+\s*[.)]|[-*•])\s*`)
)

// ExtractHeadlines pulls headline candidates out of free-form model output.
// A JSON array (of strings or of {"headline": ...} objects) is preferred; otherwise
// non-blank lines are used with list markers and quotes stripped.
func ExtractHeadlines(raw string) []string {
	text := raw
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		var items []any
		if err := json.Unmarshal([]byte(text[start:end+1]), &items); err == nil {
			return project(items)
		}
	}
	return splitLines(text)
}

func project(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			if h, ok := v["headline"].(string); ok {
				out = append(out, h)
			}
		}
	}
	return out
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = bulletPattern.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		line = strings.TrimSuffix(line, ",")
		line = strings.Trim(line, `"'`)
		line = strings.TrimSpace(line)
		if !hasWordChar(line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

func hasWordChar(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Normalize strips markup, drops empties and duplicates (first seen wins) and truncates to count.
func Normalize(headlines []string, count int) []string {
	seen := make(map[string]struct{}, len(headlines))
	out := make([]string, 0, len(headlines))
	for _, h := range headlines {
		h = helpers.PlainText(h)
		if h == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
		if count > 0 && len(out) == count {
			break
		}
	}
	return out
}
