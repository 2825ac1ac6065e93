package geo

import (
	"errors"
	"slices"
)

// ErrNoProperties is returned when no feature carries any property.
var ErrNoProperties = errors.New("no properties found, nothing to display")

// defaultColumn is preferred as the filter column when present.
const defaultColumn = "name"

// Table is the row-oriented view of feature properties: one row per feature,
// one column per property key seen anywhere, in first-seen order.
type Table struct {
	Columns []string
	Rows    []Row
}

// Row is one feature's values aligned to Table.Columns. Missing values are
// nil. Index is the position of the feature in the source slice.
type Row struct {
	Index  int
	Values []any
}

// BuildTable projects features into a Table.
func BuildTable(features []*Feature) (*Table, error) {
	var columns []string
	seen := map[string]int{}
	for _, f := range features {
		for _, k := range f.Properties.Keys() {
			if _, ok := seen[k]; !ok {
				seen[k] = len(columns)
				columns = append(columns, k)
			}
		}
	}
	if len(columns) == 0 {
		return nil, ErrNoProperties
	}

	rows := make([]Row, len(features))
	for i, f := range features {
		values := make([]any, len(columns))
		for _, k := range f.Properties.Keys() {
			values[seen[k]], _ = f.Properties.Get(k)
		}
		rows[i] = Row{Index: i, Values: values}
	}
	return &Table{Columns: columns, Rows: rows}, nil
}

// Column returns the index of name, or -1.
func (t *Table) Column(name string) int {
	return slices.Index(t.Columns, name)
}

// DefaultFilterColumn returns the index of the "name" column, or 0.
func (t *Table) DefaultFilterColumn() int {
	if i := t.Column(defaultColumn); i >= 0 {
		return i
	}
	return 0
}

// Filter keeps the rows whose attribute matches pattern, with the same rules
// as Filter. It returns the filtered table and its row count.
func (t *Table) Filter(attribute, pattern string) (*Table, int, error) {
	if pattern == "" {
		return t, len(t.Rows), nil
	}
	col := t.Column(attribute)
	if col < 0 {
		return &Table{Columns: t.Columns, Rows: []Row{}}, 0, nil
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, 0, err
	}

	rows := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if re.MatchString(StringValue(r.Values[col])) {
			rows = append(rows, r)
		}
	}
	return &Table{Columns: t.Columns, Rows: rows}, len(rows), nil
}

// Select returns a table restricted to the given columns, in the given
// order. Unknown columns are skipped.
func (t *Table) Select(columns []string) *Table {
	idx := make([]int, 0, len(columns))
	cols := make([]string, 0, len(columns))
	for _, c := range columns {
		if i := t.Column(c); i >= 0 {
			idx = append(idx, i)
			cols = append(cols, c)
		}
	}
	rows := make([]Row, len(t.Rows))
	for n, r := range t.Rows {
		values := make([]any, len(idx))
		for j, i := range idx {
			values[j] = r.Values[i]
		}
		rows[n] = Row{Index: r.Index, Values: values}
	}
	return &Table{Columns: cols, Rows: rows}
}
