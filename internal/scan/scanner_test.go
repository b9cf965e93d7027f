package scan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestFindArchive_FilePassesThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whatever.json")
	got, err := FindArchive(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestFindArchive_NewestInDirectory(t *testing.T) {
	root := t.TempDir()
	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now().Add(-time.Hour)

	touch(t, filepath.Join(root, "2023", "conversations.json"), old)
	touch(t, filepath.Join(root, "2024", "conversations.json"), recent)
	touch(t, filepath.Join(root, "notes.txt"), recent)
	touch(t, filepath.Join(root, ".cache", "conversations.json"), time.Now())

	got, err := FindArchive(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "2024", "conversations.json"), got)
}

func TestScanDir_JSONBeforeZipOnTie(t *testing.T) {
	root := t.TempDir()
	ts := time.Now().Add(-time.Hour).Truncate(time.Second)
	touch(t, filepath.Join(root, "a-export.zip"), ts)
	touch(t, filepath.Join(root, "z", "conversations.json"), ts)

	files, err := ScanDir(root)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "json", files[0].Kind)
	assert.Equal(t, "zip", files[1].Kind)
}

func TestFindArchive_EmptyDirectory(t *testing.T) {
	_, err := FindArchive(t.TempDir())
	assert.ErrorIs(t, err, ErrNoArchive)
}
