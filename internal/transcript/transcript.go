// Package transcript linearizes a conversation's message tree into an
// ordered list of (role, content) entries.
package transcript

import (
	"strings"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/archive"
)

type Entry struct {
	Role    string
	Content string
}

// Extract walks every root of the mapping in mapping order and emits each
// node's message before its children's, depth first. Each node is visited
// at most once; child IDs missing from the mapping are skipped.
func Extract(m archive.Mapping) []Entry {
	var entries []Entry
	visited := make(map[string]struct{}, m.Len())

	var roots []string
	for _, id := range m.Keys() {
		if n, _ := m.Get(id); n.IsRoot() {
			roots = append(roots, id)
		}
	}

	for _, root := range roots {
		stack := []string{root}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if _, seen := visited[id]; seen {
				continue
			}
			n, ok := m.Get(id)
			if !ok {
				continue
			}
			visited[id] = struct{}{}

			if n.Message != nil {
				entries = append(entries, Entry{
					Role:    n.Message.Role,
					Content: Content(n.Message),
				})
			}

			// push in reverse so the first child is popped first
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, n.Children[i])
			}
		}
	}
	return entries
}

// Content joins a message's text parts with newlines.
func Content(msg *archive.Message) string {
	var parts []string
	for _, p := range msg.Parts {
		if p.Skip {
			continue
		}
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}

// Stats counts entries per role.
func Stats(entries []Entry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Role]++
	}
	return counts
}
