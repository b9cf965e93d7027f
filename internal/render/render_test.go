package render

import (
	"strings"
	"testing"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/transcript"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func entries(n int) []transcript.Entry {
	out := make([]transcript.Entry, n)
	for i := range out {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		out[i] = transcript.Entry{Role: role, Content: "message"}
	}
	return out
}

func TestRenderTranscript_Empty(t *testing.T) {
	out, hit := RenderTranscript("t", nil, Options{HitEntry: -1})
	assert.Equal(t, "(empty conversation)", out)
	assert.Equal(t, -1, hit)
}

func TestRenderTranscript_Labels(t *testing.T) {
	es := []transcript.Entry{
		{Role: "user", Content: "q"},
		{Role: "assistant", Content: "a"},
		{Role: "tool", Content: "out"},
		{Role: "system", Content: "sys"},
	}
	out, hit := RenderTranscript("Title", es, Options{HitEntry: -1, Context: -1})

	assert.Equal(t, -1, hit)
	assert.Contains(t, out, "--- Title (4 messages) ---")
	for _, label := range []string{"USER", "ASST", "TOOL", "SYSTEM"} {
		assert.Contains(t, out, label)
	}
}

func TestRenderTranscript_HideSystem(t *testing.T) {
	es := []transcript.Entry{
		{Role: "system", Content: "hidden prompt"},
		{Role: "user", Content: "hi"},
	}
	out, _ := RenderTranscript("t", es, Options{HitEntry: -1, HideSystem: true})
	assert.NotContains(t, out, "hidden prompt")
	assert.Contains(t, out, "hi")
}

func TestRenderTranscript_HitWindow(t *testing.T) {
	out, hit := RenderTranscript("t", entries(30), Options{HitEntry: 15, Context: 2})

	assert.Contains(t, out, "(13 messages before)")
	assert.Contains(t, out, "(12 messages after)")
	assert.Contains(t, out, ">> ASST #15 <<")

	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[hit], "#15")
}

func TestHighlightKeywords(t *testing.T) {
	got := highlightKeywords("Go and GO", "go AND")
	assert.Equal(t, colorBoldRed+"Go"+colorReset+" and "+colorBoldRed+"GO"+colorReset, got)
	assert.Equal(t, "plain", highlightKeywords("plain", ""))
}

func TestWrapLine(t *testing.T) {
	assert.Equal(t, []string{"abcd", "ef"}, wrapLine("abcd"+"ef", 4))
	assert.Equal(t, []string{""}, wrapLine("", 4))

	// ANSI codes take no columns
	colored := colorUser + "abcd" + colorReset
	assert.Equal(t, []string{colored}, wrapLine(colored, 4))

	// wide runes count double
	for _, l := range wrapLine("日本語です", 4) {
		assert.LessOrEqual(t, ansi.StringWidth(l), 4)
	}
}

func TestHighlightKeywords_LongestTermWins(t *testing.T) {
	got := highlightKeywords("golang", "go golang")
	assert.Equal(t, colorBoldRed+"golang"+colorReset, got)

	// multibyte text around a match stays intact
	got = highlightKeywords("日本go語", "GO")
	assert.Equal(t, "日本"+colorBoldRed+"go"+colorReset+"語", got)
}

func TestIndentLines(t *testing.T) {
	assert.Equal(t, "  a\n  b", indentLines("a\nb", "  "))
	assert.Equal(t, "  ", indentLines("", "  "))
}

func TestWindow(t *testing.T) {
	tests := []struct {
		total, hit, context int
		start, end          int
	}{
		{10, -1, 2, 0, 10},
		{10, 5, 2, 3, 8},
		{10, 0, 3, 0, 4},
		{10, 9, 3, 6, 10},
		{10, 12, 3, 0, 10},
	}
	for _, tt := range tests {
		start, end := window(tt.total, tt.hit, tt.context)
		assert.Equal(t, tt.start, start, "start for hit %d", tt.hit)
		assert.Equal(t, tt.end, end, "end for hit %d", tt.hit)
	}
}
