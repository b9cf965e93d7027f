package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/transcript"
	"github.com/charmbracelet/x/ansi"
)

const (
	colorReset   = "\033[0m"
	colorUser    = "\033[1;34m" // bold blue
	colorAssist  = "\033[1;32m" // bold green
	colorTool    = "\033[2;35m" // dim magenta for tool output
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	HitEntry   int    // entry index to highlight, -1 for none
	Context    int    // entries before/after hit to show
	Width      int    // wrap width (0 = no wrap)
	HideSystem bool   // drop system entries
	Query      string // search query for keyword highlighting
}

// stopWords are query operators, never highlighted.
var stopWords = map[string]bool{
	"AND": true, "OR": true, "NOT": true,
	"and": true, "or": true, "not": true,
}

// queryTerms splits a query into the words worth highlighting.
func queryTerms(query string) []string {
	var terms []string
	for _, t := range strings.Fields(query) {
		if !stopWords[t] {
			terms = append(terms, t)
		}
	}
	return terms
}

// highlightKeywords paints every case-insensitive occurrence of a query term
// bold red. At each position the longest matching term wins.
func highlightKeywords(text, query string) string {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return text
	}

	var b strings.Builder
	for i := 0; i < len(text); {
		if n := longestMatch(text[i:], terms); n > 0 {
			b.WriteString(colorBoldRed + text[i:i+n] + colorReset)
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		i += size
	}
	return b.String()
}

// longestMatch returns the byte length of the longest term s starts with,
// ignoring case, or 0.
func longestMatch(s string, terms []string) int {
	best := 0
	for _, t := range terms {
		if len(t) > best && len(t) <= len(s) && strings.EqualFold(s[:len(t)], t) {
			best = len(t)
		}
	}
	return best
}

func indentLines(text, prefix string) string {
	return prefix + strings.ReplaceAll(text, "\n", "\n"+prefix)
}

// wrapLine splits line into rows of at most width columns. Escape sequences
// take no columns and wide runes take two.
func wrapLine(line string, width int) []string {
	if width <= 0 {
		return []string{line}
	}
	return strings.Split(ansi.Hardwrap(line, width, true), "\n")
}

type roleStyle struct {
	color string
	label string
}

var roleStyles = map[string]roleStyle{
	"user":      {colorUser, "USER"},
	"assistant": {colorAssist, "ASST"},
	"tool":      {colorTool, "TOOL"},
}

func styleFor(role string) roleStyle {
	if st, ok := roleStyles[role]; ok {
		return st
	}
	return roleStyle{colorDim, strings.ToUpper(role)}
}

// lines accumulates rendered output, wrapping as it goes, and counts rows so
// callers can scroll to a given entry.
type lines struct {
	b     strings.Builder
	n     int
	width int
}

func (l *lines) add(s string) {
	for _, row := range wrapLine(s, l.width) {
		l.b.WriteString(row)
		l.b.WriteByte('\n')
		l.n++
	}
}

func (l *lines) dim(format string, args ...any) {
	l.add(colorDim + fmt.Sprintf(format, args...) + colorReset)
}

// window returns the [start, end) range of entries shown around hit.
func window(total, hit, context int) (int, int) {
	if hit < 0 || hit >= total {
		return 0, total
	}
	return max(0, hit-context), min(total, hit+context+1)
}

// RenderTranscript renders entries for the terminal. It returns the text and
// the row of the hit entry's header, or -1 without a hit.
func RenderTranscript(title string, entries []transcript.Entry, opts Options) (string, int) {
	if len(entries) == 0 {
		return "(empty conversation)", -1
	}
	switch {
	case opts.Context == 0:
		opts.Context = 10
	case opts.Context < 0:
		opts.Context = len(entries)
	}

	start, end := window(len(entries), opts.HitEntry, opts.Context)
	out := &lines{width: opts.Width}
	hitLine := -1

	out.dim("--- %s (%d messages) ---", title, len(entries))
	if start > 0 {
		out.dim("... (%d messages before) ...", start)
	}

	shown := 0
	for i := start; i < end; i++ {
		e := entries[i]
		if opts.HideSystem && e.Role == "system" {
			continue
		}
		if shown > 0 {
			out.dim("%s", strings.Repeat("-", 50))
		}
		shown++

		st := styleFor(e.Role)
		if i == opts.HitEntry {
			hitLine = out.n
			out.add(fmt.Sprintf("%s>> %s #%d <<%s", colorHit, st.label, i, colorReset))
		} else {
			out.add(fmt.Sprintf("%s%s >%s %s#%d%s", st.color, st.label, colorReset, colorDim, i, colorReset))
		}

		body := e.Content
		if e.Role == "tool" {
			body = colorDim + body + colorReset
		}
		for _, row := range strings.Split(indentLines(highlightKeywords(body, opts.Query), "  "), "\n") {
			out.add(row)
		}
		out.add("")
	}

	if after := len(entries) - end; after > 0 {
		out.dim("... (%d messages after) ...", after)
	}
	return out.b.String(), hitLine
}
