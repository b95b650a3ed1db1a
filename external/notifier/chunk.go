package notifier

import (
	"strings"
	"unicode/utf8"
)

// SplitMessage cuts text into pieces of at most limit runes, breaking on line
// boundaries where it can. A single line longer than limit is hard-split.
func SplitMessage(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	out := make([]string, 0, 2)
	var current strings.Builder
	currentLen := 0
	flush := func() {
		if chunk := strings.TrimRight(current.String(), "\n"); strings.TrimSpace(chunk) != "" {
			out = append(out, chunk)
		}
		current.Reset()
		currentLen = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		lineLen := utf8.RuneCountInString(line)
		if currentLen+lineLen <= limit {
			current.WriteString(line)
			currentLen += lineLen
			continue
		}

		flush()
		for lineLen > limit {
			runes := []rune(line)
			out = append(out, string(runes[:limit]))
			line = string(runes[limit:])
			lineLen = len(runes) - limit
		}
		current.WriteString(line)
		currentLen = lineLen
	}
	flush()
	return out
}
