package archive

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ArchiveFileName is the member holding conversations in a data export.
const ArchiveFileName = "conversations.json"

var (
	ErrFileNotFound  = errors.New("file not found")
	ErrInvalidFormat = errors.New("invalid format")
)

// LoadError reports why an archive could not be loaded. Kind is one of
// ErrFileNotFound or ErrInvalidFormat, so callers can use errors.Is.
type LoadError struct {
	Kind error
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	switch e.Kind {
	case ErrFileNotFound:
		return fmt.Sprintf("the file '%s' was not found", e.Path)
	case ErrInvalidFormat:
		if corruptZip(e.Err) {
			return fmt.Sprintf("the file '%s' is not a valid zip archive", e.Path)
		}
		return fmt.Sprintf("the file '%s' is not a valid JSON file", e.Path)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

// Hint returns a short suggestion for the user.
func (e *LoadError) Hint() string {
	switch e.Kind {
	case ErrFileNotFound:
		return "Check the path, or point --input at conversations.json or the export .zip."
	case ErrInvalidFormat:
		return "Expected the conversations.json from a chat data export (a JSON array of conversations)."
	}
	return ""
}

func (e *LoadError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Load reads an archive from a JSON file or from the conversations.json
// member of a .zip export.
func Load(filePath string) (*Archive, error) {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(filePath), ".zip") {
		data, err = readZipMember(filePath, ArchiveFileName)
	} else {
		data, err = readRegular(filePath)
	}
	if err != nil {
		kind := ErrFileNotFound
		if corruptZip(err) {
			kind = ErrInvalidFormat
		}
		return nil, &LoadError{Kind: kind, Path: filePath, Err: err}
	}

	a, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = filePath
		}
		return nil, err
	}
	return a, nil
}

// Parse decodes an in-memory document. The top level must be an array of
// conversation objects.
func Parse(data []byte) (*Archive, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var convs []Conversation
	if err := json.Unmarshal(data, &convs); err != nil {
		return nil, &LoadError{Kind: ErrInvalidFormat, Err: err}
	}
	if convs == nil {
		// top-level null
		return nil, &LoadError{Kind: ErrInvalidFormat, Err: errors.New("expected a JSON array, got null")}
	}
	return &Archive{Conversations: convs}, nil
}

func readRegular(filePath string) ([]byte, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", filePath)
	}
	return os.ReadFile(filePath)
}

// corruptZip reports errors from a file that exists but is not a readable
// zip archive.
func corruptZip(err error) bool {
	var flateErr flate.CorruptInputError
	return errors.Is(err, zip.ErrFormat) ||
		errors.Is(err, zip.ErrAlgorithm) ||
		errors.Is(err, zip.ErrChecksum) ||
		errors.As(err, &flateErr)
}

func readZipMember(zipPath, name string) ([]byte, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if path.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found in %s", name, zipPath)
}
