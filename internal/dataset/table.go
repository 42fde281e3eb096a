package dataset

import (
	"strconv"
	"time"
)

// Kind identifies the type stored in a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindDate
)

// Value is a single table cell. The zero value is null.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Date time.Time
}

// Null returns a null cell.
func Null() Value { return Value{} }

// String returns a string cell. An empty string is stored as null so that
// outer-union merges and sparse CSV rows behave uniformly.
func String(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Kind: KindString, Str: s}
}

// Number returns a numeric cell.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// DateValue returns a date cell.
func DateValue(t time.Time) Value { return Value{Kind: KindDate, Date: t} }

// IsNull reports whether the cell holds no value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Text renders the cell for display, join keys and textual summaries.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		return v.Date.Format("2006-01-02")
	default:
		return ""
	}
}

// Row is one record of a table, positionally aligned with Table.Columns.
type Row []Value

// Table is a row-oriented tabular dataset with ordered, named columns.
// Tables are treated as immutable by every analysis function; only the
// preparation step builds new tables.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given column order.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool { return t.ColumnIndex(name) >= 0 }

// EnsureColumn returns the index of the named column, appending it (and
// padding existing rows with nulls) when absent.
func (t *Table) EnsureColumn(name string) int {
	if idx := t.ColumnIndex(name); idx >= 0 {
		return idx
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], Null())
	}
	return len(t.Columns) - 1
}

// AppendRow adds a row, padding or truncating to the column count.
func (t *Table) AppendRow(row Row) {
	for len(row) < len(t.Columns) {
		row = append(row, Null())
	}
	t.Rows = append(t.Rows, row[:len(t.Columns)])
}

// Value returns the cell at the given row for the named column. Unknown
// columns yield null, which lets callers treat sparse tables uniformly.
func (t *Table) Value(rowIdx int, column string) Value {
	idx := t.ColumnIndex(column)
	if idx < 0 || rowIdx < 0 || rowIdx >= len(t.Rows) || idx >= len(t.Rows[rowIdx]) {
		return Null()
	}
	return t.Rows[rowIdx][idx]
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Clone returns a deep copy of the table. Preparation steps operate on a
// clone so the caller's snapshot stays intact when a step fails midway.
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns...)
	out.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append(Row(nil), row...)
	}
	return out
}

// Merge concatenates tables row-wise using an outer union of column names:
// the result carries every column seen in any input, in first-seen order,
// and rows from tables lacking a column hold nulls there.
func Merge(tables ...*Table) *Table {
	merged := NewTable()
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			merged.EnsureColumn(c)
		}
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for i := range t.Rows {
			row := make(Row, len(merged.Columns))
			for j, c := range merged.Columns {
				if src := t.ColumnIndex(c); src >= 0 && src < len(t.Rows[i]) {
					row[j] = t.Rows[i][src]
				}
			}
			merged.Rows = append(merged.Rows, row)
		}
	}
	return merged
}
