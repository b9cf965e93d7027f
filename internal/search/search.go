package search

import (
	"strings"
	"time"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/archive"
	"github.com/Zuo-Peng/chatgpt-exporter/internal/transcript"
)

type Result struct {
	Index      int // conversation index in the archive
	EntryIndex int // -1 when only the title matched
	Title      string
	UpdatedAt  string
	Role       string
	Snippet    string
	Entries    int
}

type Options struct {
	Query string
	Role  string // "" = all
	Limit int    // 0 = no limit
}

// Search matches the query case-insensitively against titles and transcript
// content. Each conversation appears at most once, at its first hit.
func Search(a *archive.Archive, opts Options) []Result {
	if opts.Query == "" {
		return ListAll(a, opts)
	}
	qLower := strings.ToLower(opts.Query)

	var results []Result
	for i, c := range a.Conversations {
		entries := transcript.Extract(c.Mapping)
		r := Result{
			Index:      i,
			EntryIndex: -1,
			Title:      c.Title,
			UpdatedAt:  FormatTime(c.UpdateTime),
			Entries:    len(entries),
		}

		matched := false
		for j, e := range entries {
			if opts.Role != "" && e.Role != opts.Role {
				continue
			}
			if strings.Contains(strings.ToLower(e.Content), qLower) {
				r.EntryIndex = j
				r.Role = e.Role
				r.Snippet = makeSnippet(e.Content, opts.Query, 30)
				matched = true
				break
			}
		}
		if !matched && opts.Role == "" && strings.Contains(strings.ToLower(c.Title), qLower) {
			r.Snippet = makeSnippet(c.Title, opts.Query, 30)
			matched = true
		}
		if !matched {
			continue
		}

		results = append(results, r)
		if opts.Limit > 0 && len(results) >= opts.Limit {
			break
		}
	}
	return results
}

// ListAll returns every conversation in archive order.
func ListAll(a *archive.Archive, opts Options) []Result {
	var results []Result
	for i, c := range a.Conversations {
		entries := transcript.Extract(c.Mapping)
		r := Result{
			Index:      i,
			EntryIndex: -1,
			Title:      c.Title,
			UpdatedAt:  FormatTime(c.UpdateTime),
			Entries:    len(entries),
		}
		if len(entries) > 0 {
			r.Role = entries[0].Role
			r.Snippet = makeSnippet(entries[0].Content, "", 30)
		}
		results = append(results, r)
		if opts.Limit > 0 && len(results) >= opts.Limit {
			break
		}
	}
	return results
}

// FormatTime renders unix seconds as a UTC date; zero renders as "-".
func FormatTime(sec float64) string {
	if sec <= 0 {
		return "-"
	}
	return time.Unix(int64(sec), 0).UTC().Format("2006-01-02")
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := -1
	if query != "" {
		idx = strings.Index(lower, qLower)
	}
	if idx < 0 || len(lower) != len(text) {
		// no match, or lowering changed byte offsets: return head
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	// find rune position of idx
	runePos := len([]rune(text[:idx]))
	if runePos+len(qRunes) > len(runes) {
		return string(runes[runePos:])
	}
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}
