// Package export writes selected conversations of an archive to CSV files,
// one file per conversation, named after the conversation title.
package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/archive"
	"github.com/Zuo-Peng/chatgpt-exporter/internal/transcript"
)

// Policy decides what happens when one file of a batch fails.
type Policy string

const (
	Abort    Policy = "abort"    // stop at the first failure
	Continue Policy = "continue" // write the rest, report all failures at the end
)

// ParsePolicy validates a policy name. The empty string means Abort.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", Abort:
		return Abort, nil
	case Continue:
		return Continue, nil
	}
	return "", fmt.Errorf("unknown error policy %q (want %q or %q)", s, Abort, Continue)
}

type Options struct {
	OnError     Policy
	MaxTitleLen int // 0 = DefaultMaxTitleLen
	CRLF        bool
	Logger      *slog.Logger
}

type Result struct {
	OutputDir string
	Written   []string // file paths in write order
}

// Export writes the conversations at indices to outputDir. An empty
// selection returns ErrNoSelection without touching the filesystem.
func Export(a *archive.Archive, indices []int, outputDir string, opts Options) (*Result, error) {
	if len(indices) == 0 {
		return nil, ErrNoSelection
	}
	if opts.MaxTitleLen == 0 {
		opts.MaxTitleLen = DefaultMaxTitleLen
	}
	if opts.OnError == "" {
		opts.OnError = Abort
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	selected, err := normalizeIndices(indices, a.Len())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, &FSError{Op: "mkdir", Path: outputDir, Err: err}
	}

	result := &Result{OutputDir: outputDir}
	var failed []*FSError
	seen := make(map[string]int)

	for _, i := range selected {
		conv := a.Conversations[i]
		name := FileName(conv.Title, opts.MaxTitleLen)
		path := filepath.Join(outputDir, name)

		if prev, ok := seen[name]; ok {
			logger.Warn("file name collision, overwriting",
				"file", path, "index", i, "previous_index", prev)
		}
		seen[name] = i

		entries := transcript.Extract(conv.Mapping)
		if err := writeFile(path, entries, opts.CRLF); err != nil {
			var fsErr *FSError
			if !errors.As(err, &fsErr) {
				fsErr = &FSError{Op: "write", Path: path, Err: err}
			}
			logger.Error("export failed", "index", i, "title", conv.Title, "error", err)
			if opts.OnError == Abort {
				return result, fsErr
			}
			failed = append(failed, fsErr)
			continue
		}

		logger.Debug("exported conversation",
			"index", i, "file", path, "entries", len(entries))
		result.Written = append(result.Written, path)
	}

	if len(failed) > 0 {
		return result, &BatchError{Failed: failed, Total: len(selected)}
	}
	return result, nil
}

func normalizeIndices(indices []int, n int) ([]int, error) {
	set := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("%w: %d (archive has %d conversations)", ErrIndexOutOfRange, i, n)
		}
		set[i] = struct{}{}
	}

	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out, nil
}
