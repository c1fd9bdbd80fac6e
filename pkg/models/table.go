package models

import (
	"sort"
	"time"
)

// TimeColumn is the name of the timestamp column. It is always the first column
// of a table that has one.
const TimeColumn = "time"

// Row is a single flattened output record: an optional timestamp plus the point
// fields and ancestor metadata that were merged onto it.
type Row struct {
	Time    time.Time         `json:"time" msgpack:"time"`
	HasTime bool              `json:"-" msgpack:"-"`
	Fields  map[string]string `json:"fields" msgpack:"fields"`
}

// Table is an ordered sequence of rows with a declared column set.
// Columns is the union of every field key seen, "time" first when any row carries
// a timestamp, the rest sorted lexicographically.
type Table struct {
	Columns []string `json:"columns" msgpack:"columns"`
	Rows    []Row    `json:"rows" msgpack:"rows"`
}

// NewTable builds a table from rows and derives its column set.
func NewTable(rows []Row) *Table {
	t := &Table{Rows: rows}
	t.Columns = columnsOf(rows)
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Value returns the string value of column for row i. The second return value
// is false when the row has no value for that column.
func (t *Table) Value(i int, column string) (string, bool) {
	r := t.Rows[i]
	if column == TimeColumn {
		if !r.HasTime {
			return "", false
		}
		return r.Time.UTC().Format(time.RFC3339), true
	}
	v, ok := r.Fields[column]
	return v, ok
}

// Concat joins tables in order. The resulting column set is the union of all
// input column sets.
func Concat(tables ...*Table) *Table {
	n := 0
	for _, t := range tables {
		n += t.Len()
	}
	rows := make([]Row, 0, n)
	for _, t := range tables {
		if t == nil {
			continue
		}
		rows = append(rows, t.Rows...)
	}
	return NewTable(rows)
}

// SortByTime orders rows chronologically. The sort is stable so rows sharing a
// timestamp keep their traversal order. Rows without a timestamp sort last.
func (t *Table) SortByTime() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i], t.Rows[j]
		if a.HasTime != b.HasTime {
			return a.HasTime
		}
		return a.Time.Before(b.Time)
	})
}

// AddColumn registers a column added after construction, keeping the column order
// invariant.
func (t *Table) AddColumn(name string) {
	for _, c := range t.Columns {
		if c == name {
			return
		}
	}
	t.Columns = sortColumnsTimeFirst(append(t.Columns, name))
}

func columnsOf(rows []Row) []string {
	seen := make(map[string]struct{})
	hasTime := false
	for _, r := range rows {
		if r.HasTime {
			hasTime = true
		}
		for k := range r.Fields {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen)+1)
	if hasTime {
		cols = append(cols, TimeColumn)
	}
	for k := range seen {
		if k == TimeColumn {
			continue
		}
		cols = append(cols, k)
	}
	return sortColumnsTimeFirst(cols)
}

// sortColumnsTimeFirst sorts column names with "time" first, rest alphabetical.
func sortColumnsTimeFirst(cols []string) []string {
	sort.Slice(cols, func(i, j int) bool {
		if cols[i] == TimeColumn {
			return true
		}
		if cols[j] == TimeColumn {
			return false
		}
		return cols[i] < cols[j]
	})
	return cols
}
