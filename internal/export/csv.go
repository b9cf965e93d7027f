package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/transcript"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var header = []string{"role", "content"}

// WriteCSV writes the header row and one row per entry to w, UTF-8 encoded
// with a leading byte order mark.
func WriteCSV(w io.Writer, entries []transcript.Entry, crlf bool) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())

	cw := csv.NewWriter(bw)
	cw.UseCRLF = crlf
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Role, e.Content}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Close()
}

// ReadCSV reads a file written by WriteCSV back into entries. Quoted
// fields come back byte-exact, carriage returns included.
func ReadCSV(r io.Reader) ([]transcript.Entry, error) {
	br := bufio.NewReader(transform.NewReader(r, unicode.UTF8BOM.NewDecoder()))

	var records [][]string
	for n := 1; ; n++ {
		rec, err := readRecord(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", n, err)
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("record %d: %w", n, csv.ErrFieldCount)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, io.ErrUnexpectedEOF
	}

	entries := make([]transcript.Entry, 0, len(records)-1)
	for _, rec := range records[1:] {
		entries = append(entries, transcript.Entry{Role: rec[0], Content: rec[1]})
	}
	return entries, nil
}

// readRecord reads one RFC 4180 record. Unlike csv.Reader it leaves "\r\n"
// inside quoted fields alone. Blank lines are skipped.
func readRecord(br *bufio.Reader) ([]string, error) {
	var (
		fields  []string
		field   strings.Builder
		inQuote bool
		closed  bool // a quoted field just ended
		atStart = true
		empty   = true
	)
	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
		atStart, closed = true, false
	}

	for {
		c, _, err := br.ReadRune()
		if errors.Is(err, io.EOF) {
			if empty {
				return nil, io.EOF
			}
			if inQuote {
				return nil, csv.ErrQuote
			}
			endField()
			return fields, nil
		}
		if err != nil {
			return nil, err
		}

		if inQuote {
			if c == '"' {
				inQuote, closed = false, true
			} else {
				field.WriteRune(c)
			}
			continue
		}

		switch {
		case c == '\n' && empty:
			continue
		case c == '"' && closed:
			// doubled quote
			field.WriteRune('"')
			inQuote, closed = true, false
		case c == '"' && atStart:
			inQuote, atStart = true, false
		case c == ',':
			endField()
		case c == '\n':
			endField()
			return fields, nil
		case c == '\r':
			next, _, err := br.ReadRune()
			if err == nil && next == '\n' {
				if empty {
					continue
				}
				endField()
				return fields, nil
			}
			if err == nil {
				_ = br.UnreadRune()
			}
			if closed {
				return nil, csv.ErrQuote
			}
			field.WriteRune(c)
			atStart = false
		case closed:
			return nil, csv.ErrQuote
		case c == '"':
			return nil, csv.ErrBareQuote
		default:
			field.WriteRune(c)
			atStart = false
		}
		empty = false
	}
}

// writeFile creates path and writes entries to it. A file that fails
// mid-write is removed.
func writeFile(path string, entries []transcript.Entry, crlf bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &FSError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &FSError{Op: "close", Path: path, Err: cerr}
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := WriteCSV(f, entries, crlf); err != nil {
		return &FSError{Op: "write", Path: path, Err: err}
	}
	return nil
}
