package notifier

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSplitMessageKeepsShortTextWhole(t *testing.T) {
	chunks := SplitMessage("  hello\nworld  ", 100)
	require.Equal(t, []string{"hello\nworld"}, chunks)
}

func TestSplitMessageEmpty(t *testing.T) {
	require.Empty(t, SplitMessage("   ", 10))
}

func TestSplitMessageBreaksOnLines(t *testing.T) {
	text := strings.Join([]string{"aaaa", "bbbb", "cccc"}, "\n")

	chunks := SplitMessage(text, 10)
	require.Equal(t, []string{"aaaa\nbbbb", "cccc"}, chunks)
}

func TestSplitMessageHardSplitsLongLine(t *testing.T) {
	line := strings.Repeat("é", 25)

	chunks := SplitMessage(line, 10)
	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		if utf8.RuneCountInString(chunk) > 10 {
			t.Fatalf("chunk exceeds limit: %q", chunk)
		}
	}
	require.Equal(t, line, strings.Join(chunks, ""))
}
