package scan

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/archive"
)

type FileInfo struct {
	Path  string
	Kind  string // "json" or "zip"
	Mtime int64
	Size  int64
}

// ErrNoArchive is returned when a directory holds no export archive.
var ErrNoArchive = errors.New("no conversations.json or .zip export found")

// FindArchive resolves an input path. Files are returned unchanged; for a
// directory the newest candidate found beneath it is returned.
func FindArchive(input string) (string, error) {
	info, err := os.Stat(input)
	if err != nil || !info.IsDir() {
		// let the loader report missing or unreadable files
		return input, nil
	}

	files, err := ScanDir(input)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", ErrNoArchive
	}
	return files[0].Path, nil
}

// ScanDir walks root for conversations.json files and .zip exports,
// newest first. Plain JSON wins over a zip with the same mtime.
func ScanDir(root string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			base := filepath.Base(path)
			if path != root && strings.HasPrefix(base, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		var kind string
		switch {
		case filepath.Base(path) == archive.ArchiveFileName:
			kind = "json"
		case strings.EqualFold(filepath.Ext(path), ".zip"):
			kind = "zip"
		default:
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Kind:  kind,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Mtime != files[j].Mtime {
			return files[i].Mtime > files[j].Mtime
		}
		return files[i].Kind == "json" && files[j].Kind != "json"
	})
	return files, nil
}
