package script

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseError describes a row that was skipped during parsing.
type ParseError struct {
	Row    int    // 1-based source row (0 when unknown)
	Reason string // human-readable cause
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return e.Reason
}

// ParseOptions controls the tabular reader.
type ParseOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// Result is the outcome of parsing a source: the store plus every row
// that had to be skipped.
type Result struct {
	Store  *Store
	Errors []*ParseError
}

// Parse reads a tabular script. The first row is a header and is skipped.
// Rows with the wrong column count or broken quoting are skipped and
// reported in Result.Errors; parsing continues.
//
// The returned error is non-nil only when the source itself cannot be read
// or holds no header row at all. That is the one fatal condition for a load.
func Parse(name string, r io.Reader, opts ParseOptions) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // column count is checked per row below
	cr.ReuseRecord = false
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	res := &Result{}
	var lines []Line
	headerSeen := false

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				pe := &ParseError{Row: csvErr.StartLine, Reason: csvErr.Err.Error()}
				res.Errors = append(res.Errors, pe)
				slog.Warn("skipping malformed row", "script", name, "row", pe.Row, "reason", pe.Reason)
				headerSeen = true
				continue
			}
			return nil, fmt.Errorf("read script %s: %w", name, err)
		}

		if !headerSeen {
			headerSeen = true
			continue
		}

		row := 0
		if len(rec) > 0 {
			row, _ = cr.FieldPos(0)
		}
		if len(rec) != ColumnCount {
			pe := &ParseError{
				Row:    row,
				Reason: fmt.Sprintf("expected %d columns, got %d", ColumnCount, len(rec)),
			}
			res.Errors = append(res.Errors, pe)
			slog.Warn("skipping malformed row", "script", name, "row", pe.Row, "reason", pe.Reason)
			continue
		}

		lines = append(lines, lineFromRecord(rec, row))
	}

	if !headerSeen {
		return nil, fmt.Errorf("read script %s: empty source, header row missing", name)
	}

	res.Store = NewStore(name, lines)
	return res, nil
}

// ParseString is a convenience wrapper for inline scripts (tests, scenarios).
func ParseString(name, src string) (*Result, error) {
	return Parse(name, strings.NewReader(src), ParseOptions{})
}
