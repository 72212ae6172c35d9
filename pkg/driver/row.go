package driver

import "strings"

// Row is a detached snapshot of one result row. Its cells are deep
// copies, so a Row is independent of the statement's reused fetch buffer
// and may be read after further fetches, or shared across goroutines.
// The column-name index is shared by reference across all rows of one
// execution.
type Row struct {
	cols   []ColumnInfo
	index  map[string]int
	values []*Value
}

// Columns reports the row's column metadata, in result order.
func (r *Row) Columns() []ColumnInfo {
	return append([]ColumnInfo(nil), r.cols...)
}

// Len reports the number of columns.
func (r *Row) Len() int {
	return len(r.values)
}

// columnIndex resolves a name the way the engine folded it: an exact
// match against the reported name first, then the upper-cased form for
// unquoted-identifier convenience. No further case folding is invented
// here.
func (r *Row) columnIndex(name string) (int, error) {
	if i, ok := r.index[name]; ok {
		return i, nil
	}
	if i, ok := r.index[strings.ToUpper(name)]; ok {
		return i, nil
	}
	return 0, newError(ErrKindInvalidColumnName, "invalid column name: %s", name)
}

// Get returns the cell for the named column.
func (r *Row) Get(name string) (*Value, error) {
	i, err := r.columnIndex(name)
	if err != nil {
		return nil, err
	}
	return r.values[i], nil
}

// GetIndex returns the cell at the given position (zero-based).
func (r *Row) GetIndex(i int) (*Value, error) {
	if i < 0 || i >= len(r.values) {
		return nil, newError(ErrKindInvalidColumnIndex, "invalid column index (zero-based): %d", i)
	}
	return r.values[i], nil
}

// ScanByName converts the named column into dest (see Value.Scan for
// supported destinations).
func (r *Row) ScanByName(name string, dest any) error {
	v, err := r.Get(name)
	if err != nil {
		return err
	}
	if err := v.Scan(dest); err != nil {
		return withColumn(err, name)
	}
	return nil
}

// ScanIndex converts the column at position i into dest.
func (r *Row) ScanIndex(i int, dest any) error {
	v, err := r.GetIndex(i)
	if err != nil {
		return err
	}
	if err := v.Scan(dest); err != nil {
		return withColumn(err, r.cols[i].Name)
	}
	return nil
}

// Scan converts all columns, in order, into the given destinations.
func (r *Row) Scan(dests ...any) error {
	if len(dests) != len(r.values) {
		return newError(ErrKindInvalidOperation,
			"scan destination count %d does not match column count %d",
			len(dests), len(r.values))
	}
	for i, dest := range dests {
		if err := r.ScanIndex(i, dest); err != nil {
			return err
		}
	}
	return nil
}

// withColumn annotates a driver error with the column it concerns.
func withColumn(err error, column string) error {
	if e, ok := err.(*Error); ok && e.Column == "" {
		annotated := *e
		annotated.Column = column
		return &annotated
	}
	return err
}
