package search

import (
	"strings"
	"testing"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testArchive = `[
  {"title": "Kubernetes rollout", "update_time": 1700000000, "mapping": {
    "u": {"message": {"author": {"role": "user"}, "content": {"parts": ["How do I roll back a deployment?"]}}, "parent": null, "children": ["a"]},
    "a": {"message": {"author": {"role": "assistant"}, "content": {"parts": ["Use kubectl rollout undo."]}}, "parent": "u"}
  }},
  {"title": "Dinner ideas", "mapping": {
    "u": {"message": {"author": {"role": "user"}, "content": {"parts": ["Something with ROLLOUT dough?"]}}, "parent": null}
  }},
  {"title": "Rollout checklist", "mapping": {}}
]`

func loadArchive(t *testing.T) *archive.Archive {
	t.Helper()
	a, err := archive.Parse([]byte(testArchive))
	require.NoError(t, err)
	return a
}

func TestSearch_ContentAndTitle(t *testing.T) {
	a := loadArchive(t)

	results := Search(a, Options{Query: "rollout"})
	require.Len(t, results, 3)

	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, 1, results[0].EntryIndex)
	assert.Equal(t, "assistant", results[0].Role)
	assert.Contains(t, results[0].Snippet, ">>>rollout<<<")
	assert.Equal(t, "2023-11-14", results[0].UpdatedAt)
	assert.Equal(t, 2, results[0].Entries)

	assert.Equal(t, 1, results[1].Index, "match is case-insensitive")
	assert.Contains(t, results[1].Snippet, ">>>ROLLOUT<<<")

	assert.Equal(t, 2, results[2].Index)
	assert.Equal(t, -1, results[2].EntryIndex, "title-only match")
	assert.Equal(t, "-", results[2].UpdatedAt)
}

func TestSearch_RoleFilter(t *testing.T) {
	a := loadArchive(t)

	results := Search(a, Options{Query: "rollout", Role: "user"})
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Index)
}

func TestSearch_Limit(t *testing.T) {
	a := loadArchive(t)
	assert.Len(t, Search(a, Options{Query: "rollout", Limit: 2}), 2)
}

func TestSearch_NoMatch(t *testing.T) {
	assert.Empty(t, Search(loadArchive(t), Options{Query: "terraform"}))
}

func TestSearch_EmptyQueryListsAll(t *testing.T) {
	a := loadArchive(t)

	results := Search(a, Options{})
	require.Len(t, results, 3)
	assert.Equal(t, "Kubernetes rollout", results[0].Title)
	assert.Equal(t, "user", results[0].Role)
	assert.Equal(t, "How do I roll back a deployment?", results[0].Snippet)
	assert.Empty(t, results[2].Snippet)
}

func TestMakeSnippet(t *testing.T) {
	long := strings.Repeat("a", 50) + "needle" + strings.Repeat("b", 50)
	got := makeSnippet(long, "needle", 5)
	assert.Equal(t, "...aaaaa>>>needle<<<bbbbb...", got)

	assert.Equal(t, "short", makeSnippet("short", "", 30))
	assert.Equal(t, strings.Repeat("x", 4)+"...", makeSnippet(strings.Repeat("x", 10), "", 2))
}
