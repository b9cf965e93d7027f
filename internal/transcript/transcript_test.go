package transcript

import (
	"fmt"
	"testing"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// node builds a mapping node whose message text is its own ID.
func node(id, parent string, children ...string) archive.Node {
	n := archive.Node{
		ID:       id,
		Message:  &archive.Message{Role: "user", Parts: []archive.Part{{Text: id}}},
		Children: children,
	}
	if parent != "" {
		n.Parent = &parent
	}
	return n
}

func contents(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Content
	}
	return out
}

func TestExtract_EmptyMapping(t *testing.T) {
	assert.Empty(t, Extract(archive.Mapping{}))
}

func TestExtract_PreOrderAcrossBranches(t *testing.T) {
	m := archive.NewMapping(
		node("r", "", "a", "b"),
		node("a", "r", "a1", "a2"),
		node("b", "r", "b1"),
		node("a1", "a"),
		node("a2", "a"),
		node("b1", "b"),
	)

	got := contents(Extract(m))
	assert.Equal(t, []string{"r", "a", "a1", "a2", "b", "b1"}, got)
}

func TestExtract_ParentBeforeChild(t *testing.T) {
	m := archive.NewMapping(
		node("c", "b"),
		node("b", "a", "c"),
		node("a", "", "b"),
	)

	// mapping order puts children first; traversal order still starts at the root
	assert.Equal(t, []string{"a", "b", "c"}, contents(Extract(m)))
}

func TestExtract_MultipleRootsInMappingOrder(t *testing.T) {
	m := archive.NewMapping(
		node("r2", "", "r2c"),
		node("r1", "", "r1c"),
		node("r1c", "r1"),
		node("r2c", "r2"),
	)

	assert.Equal(t, []string{"r2", "r2c", "r1", "r1c"}, contents(Extract(m)))
}

func TestExtract_CycleAndDanglingChild(t *testing.T) {
	m := archive.NewMapping(
		node("r", "", "a", "ghost"),
		node("a", "r", "b"),
		node("b", "a", "a", "r"), // points back up the tree
	)

	assert.Equal(t, []string{"r", "a", "b"}, contents(Extract(m)))
}

func TestExtract_PureCycleWithoutRoot(t *testing.T) {
	m := archive.NewMapping(
		node("a", "b", "b"),
		node("b", "a", "a"),
	)

	assert.Empty(t, Extract(m))
}

func TestExtract_DiamondVisitedOnce(t *testing.T) {
	m := archive.NewMapping(
		node("r", "", "a", "b"),
		node("a", "r", "shared"),
		node("b", "r", "shared"),
		node("shared", "a"),
	)

	assert.Equal(t, []string{"r", "a", "shared", "b"}, contents(Extract(m)))
}

func TestExtract_MessagelessNodesEmitNothing(t *testing.T) {
	root := archive.Node{ID: "root", Children: []string{"u"}}
	m := archive.NewMapping(root, node("u", "root"))

	entries := Extract(m)
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{Role: "user", Content: "u"}, entries[0])
}

func TestExtract_EmptyMessageStillEmitted(t *testing.T) {
	m := archive.NewMapping(archive.Node{
		ID:      "n",
		Message: &archive.Message{Role: "assistant"},
	})

	assert.Equal(t, []Entry{{Role: "assistant", Content: ""}}, Extract(m))
}

func TestExtract_EveryReachableNodeOnce(t *testing.T) {
	// a deep chain exercises the explicit stack
	const depth = 5000
	nodes := make([]archive.Node, depth)
	for i := 0; i < depth; i++ {
		parent := ""
		if i > 0 {
			parent = fmt.Sprint(i - 1)
		}
		var children []string
		if i < depth-1 {
			children = []string{fmt.Sprint(i + 1)}
		}
		nodes[i] = node(fmt.Sprint(i), parent, children...)
	}

	entries := Extract(archive.NewMapping(nodes...))
	require.Len(t, entries, depth)
	for i, e := range entries {
		assert.Equal(t, fmt.Sprint(i), e.Content)
	}
}

func TestExtract_FromDocument(t *testing.T) {
	a, err := archive.Parse([]byte(`[{"title": "t", "mapping": {
	  "sys": {"message": null, "parent": null, "children": ["m"]},
	  "m": {"message": {"author": {"role": "user"}, "content": {"parts": ["a", {"text": "b"}]}}, "parent": "sys", "children": []}
	}}]`))
	require.NoError(t, err)

	assert.Equal(t, []Entry{{Role: "user", Content: "a\nb"}}, Extract(a.Conversations[0].Mapping))
}

func TestExtract_BareMessageObject(t *testing.T) {
	a, err := archive.Parse([]byte(`[{"mapping": {
	  "m": {"message": {"id": "m1", "author": null, "status": "finished_successfully"}, "parent": null},
	  "e": {"message": {}, "parent": null}
	}}]`))
	require.NoError(t, err)

	assert.Equal(t, []Entry{{Role: "unknown", Content: ""}}, Extract(a.Conversations[0].Mapping))
}

func TestContent(t *testing.T) {
	tests := []struct {
		name  string
		parts []archive.Part
		want  string
	}{
		{"no parts", nil, ""},
		{"single", []archive.Part{{Text: "hi"}}, "hi"},
		{"joined", []archive.Part{{Text: "a"}, {Text: "b"}}, "a\nb"},
		{"empty object text kept", []archive.Part{{Text: "a"}, {Text: ""}, {Text: "c"}}, "a\n\nc"},
		{"skipped parts dropped", []archive.Part{{Text: "a"}, {Skip: true}, {Text: "c"}}, "a\nc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Content(&archive.Message{Parts: tt.parts}))
		})
	}
}

func TestStats(t *testing.T) {
	got := Stats([]Entry{{Role: "user"}, {Role: "assistant"}, {Role: "user"}})
	assert.Equal(t, map[string]int{"user": 2, "assistant": 1}, got)
}
