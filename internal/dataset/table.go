package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Table is an in-memory copy of a comma-separated file. Rows are padded to the
// header width; cells are kept verbatim and interpreted through Cell.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string

	index map[string]int
}

// naValues mirrors the strings pandas treats as missing by default.
var naValues = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsNA reports whether a raw cell denotes a missing value. Matching is exact,
// so a cell of only spaces is present.
func IsNA(raw string) bool {
	_, ok := naValues[raw]
	return ok
}

// Load reads the CSV file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open csv %s: %w: %w", path, ErrNotFound, err)
		}
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return Read(f, filepath.Base(path))
}

// Read parses comma-separated input. The first record is the header. Rows
// shorter than the header are padded with missing cells; longer rows are a
// parse error. A quote inside an unquoted field is kept as literal text; a
// quoted field still open at end of input is a parse error.
func Read(r io.Reader, name string) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.Comma = ','
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: %w: no columns to parse", ErrParse)
		}
		return nil, fmt.Errorf("read header: %w: %w", ErrParse, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	t := &Table{Name: name, Header: dedupeHeader(header)}
	t.buildIndex()

	ncol := len(t.Header)
	// LazyQuotes lets an unterminated quoted field run silently to EOF, and
	// only the final record can contain one.
	var last int64
	for {
		start := cr.InputOffset()
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w: %w", len(t.Rows)+1, ErrParse, err)
		}
		if len(rec) > ncol {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: expected %d fields in line %d, saw %d", ErrParse, ncol, line, len(rec))
		}
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rec = tmp
		}
		t.Rows = append(t.Rows, rec)
		last = start
	}
	if openQuote(data[last:]) {
		return nil, fmt.Errorf("%w: unterminated quoted field starting in row %d", ErrParse, len(t.Rows))
	}
	return t, nil
}

// openQuote reports whether raw ends inside a quoted field, using the same
// lazy rules as the reader: a quote only opens a field at its start and only
// closes it before a delimiter, line end or end of input.
func openQuote(raw []byte) bool {
	inQuote, fieldStart := false, true
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case inQuote:
			if c != '"' {
				continue
			}
			if i+1 < len(raw) && raw[i+1] == '"' {
				i++
				continue
			}
			if i+1 == len(raw) || raw[i+1] == ',' || raw[i+1] == '\n' || raw[i+1] == '\r' {
				inQuote = false
			}
		case fieldStart && c == '"':
			inQuote, fieldStart = true, false
		case c == ',' || c == '\n':
			fieldStart = true
		default:
			fieldStart = false
		}
	}
	return inQuote
}

// dedupeHeader renames repeated column names to name.1, name.2, ...
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	next := make(map[string]int)
	for i, h := range header {
		name := h
		for used[name] {
			next[h]++
			name = fmt.Sprintf("%s.%d", h, next[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		t.index[h] = i
	}
}

// Shape returns (rows, columns).
func (t *Table) Shape() (int, int) { return len(t.Rows), len(t.Header) }

// Column returns the position of a named column.
func (t *Table) Column(name string) (int, bool) {
	if t.index == nil {
		t.buildIndex()
	}
	i, ok := t.index[name]
	return i, ok
}

// Validate checks that every named column is present in the header.
func (t *Table) Validate(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if _, ok := t.Column(c); !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// Cell returns the value at (row, col), absent when the cell is missing.
func (t *Table) Cell(row, col int) Nullable[string] {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return None[string]()
	}
	v := t.Rows[row][col]
	if IsNA(v) {
		return None[string]()
	}
	return Some(v)
}
