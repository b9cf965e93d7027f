package export

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoSelection means nothing was selected. It is guidance for the
	// user, not a failure.
	ErrNoSelection = errors.New("no conversation selected")

	ErrIndexOutOfRange = errors.New("conversation index out of range")
)

// FSError is a directory creation or file write failure.
type FSError struct {
	Op   string // "mkdir", "create", "write", "close"
	Path string
	Err  error
}

func (e *FSError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FSError) Unwrap() error {
	return e.Err
}

// BatchError summarizes every failed file of a best-effort export.
type BatchError struct {
	Failed []*FSError
	Total  int
}

func (e *BatchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d of %d conversations failed to export", len(e.Failed), e.Total)
	for _, f := range e.Failed {
		sb.WriteString("\n  ")
		sb.WriteString(f.Error())
	}
	return sb.String()
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f
	}
	return errs
}
