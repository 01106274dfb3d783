package domain

import (
	"strconv"
	"strings"
)

// CellKind tags the semantic type of a single cell value.
type CellKind uint8

const (
	CellMissing CellKind = iota
	CellNumber
	CellText
)

// naTokens are the values read as missing, matching the pandas read_csv defaults.
var naTokens = map[string]struct{}{
	"":         {},
	"NA":       {},
	"N/A":      {},
	"n/a":      {},
	"NaN":      {},
	"nan":      {},
	"-NaN":     {},
	"-nan":     {},
	"NULL":     {},
	"null":     {},
	"None":     {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"<NA>":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
}

// Cell is one value of a Table row.
type Cell struct {
	Text string   `json:"text"`
	Num  float64  `json:"-"`
	Kind CellKind `json:"kind"`
}

// ParseCell converts a raw field into a Cell. Surrounding whitespace is
// trimmed before NA detection and numeric parsing.
func ParseCell(raw string) Cell {
	text := strings.TrimSpace(raw)
	if _, ok := naTokens[text]; ok {
		return Cell{Kind: CellMissing}
	}
	if num, ok := parseNumber(text); ok {
		return Cell{Text: text, Num: num, Kind: CellNumber}
	}
	return Cell{Text: text, Kind: CellText}
}

// NumberCell builds a numeric cell, formatting the text the way it would be
// written in a CSV file.
func NumberCell(v float64) Cell {
	return Cell{Text: strconv.FormatFloat(v, 'f', -1, 64), Num: v, Kind: CellNumber}
}

// TextCell builds a text cell without any numeric inference.
func TextCell(s string) Cell {
	return Cell{Text: s, Kind: CellText}
}

// MissingCell returns the missing value.
func MissingCell() Cell {
	return Cell{Kind: CellMissing}
}

// IsMissing reports whether the cell holds no value.
func (c Cell) IsMissing() bool { return c.Kind == CellMissing }

// IsNumber reports whether the cell parsed as a number.
func (c Cell) IsNumber() bool { return c.Kind == CellNumber }

func (c Cell) String() string {
	if c.Kind == CellMissing {
		return "NaN"
	}
	return c.Text
}

// parseNumber accepts plain decimal and exponent forms only. Go's ParseFloat
// also takes hex floats and digit separators, which CSV readers treat as text.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+', r == 'e', r == 'E':
		case r == 'i' || r == 'n' || r == 'f' || r == 't' || r == 'y' || r == 'I' || r == 'N' || r == 'F' || r == 'T' || r == 'Y':
			// letters of inf/infinity
		default:
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Row is a single record of a Table, one cell per column.
type Row []Cell

// Table is an ordered set of named columns over a shared row index.
// Tables are never mutated once built; derived tables share column metadata.
type Table struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// NewTable builds a table. Rows shorter than the header are padded with
// missing cells and longer rows are truncated, so every row has exactly
// len(columns) cells.
func NewTable(columns []string, rows []Row) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)

	index := make(map[string]int, len(cols))
	for i, name := range cols {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	normalized := make([]Row, len(rows))
	for i, row := range rows {
		switch {
		case len(row) == len(cols):
			normalized[i] = row
		case len(row) < len(cols):
			padded := make(Row, len(cols))
			copy(padded, row)
			normalized[i] = padded
		default:
			normalized[i] = row[:len(cols):len(cols)]
		}
	}

	return &Table{columns: cols, index: index, rows: normalized}
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool { return t.Len() == 0 }

// ColumnIndex returns the position of a column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Row returns the i-th row. The returned slice must not be modified.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Cell returns the cell at row i of the named column.
func (t *Table) Cell(i int, column string) (Cell, bool) {
	ci, ok := t.index[column]
	if !ok {
		return Cell{}, false
	}
	return t.rows[i][ci], true
}

// Column returns a copy of every cell of the named column.
func (t *Table) Column(name string) ([]Cell, bool) {
	ci, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]Cell, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[ci]
	}
	return out, true
}

// Select returns a new table holding the given rows in the given order.
func (t *Table) Select(indices []int) *Table {
	rows := make([]Row, len(indices))
	for i, idx := range indices {
		rows[i] = t.rows[idx]
	}
	return &Table{columns: t.columns, index: t.index, rows: rows}
}
