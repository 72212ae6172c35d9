package driver

import (
	"context"

	"github.com/leapstack-labs/oraq/pkg/dpi"
	"github.com/leapstack-labs/oraq/pkg/oratype"
)

// DefaultFetchArraySize is the number of rows fetched per native round
// trip when the caller does not override it. Set it to 1 for
// single-row-expected queries to minimize buffer memory.
const DefaultFetchArraySize = 100

// fetchColumn is one column's slice of the fetch array: the variable
// buffer rows are bulk-fetched into, plus the metadata that shaped it.
type fetchColumn struct {
	info    ColumnInfo
	defined oratype.OracleType
	native  dpi.NativeTypeNum
	varH    *dpi.Handle
	data    []dpi.Data
}

// fetchBuffer owns the per-column batch buffers of one query execution.
// Buffers are reused across refills; a Value pointing into them is
// invalidated when advance crosses a refill boundary, which is why Row
// detaches copies.
type fetchBuffer struct {
	arraySize uint32
	cols      []*fetchColumn
	fill      uint32 // rows in the buffer from the last native fetch
	cursor    uint32 // rows of the current batch already served
	done      bool   // native layer reported the end of the result set
	exhausted bool   // advance walked past the final row

	// nativeFetches counts round trips, for observability.
	nativeFetches int
}

// newFetchBuffer defines every result column and allocates its buffer.
// An explicit per-column definition wins over the engine metadata; the
// implicit definition applies the integer fast path for scale-zero
// NUMBER columns that fit int64. On any failure the already-allocated
// buffers are released before returning.
func newFetchBuffer(s *Statement, arraySize uint32, explicit map[int]oratype.OracleType) (*fetchBuffer, error) {
	if arraySize == 0 {
		arraySize = DefaultFetchArraySize
	}
	fb := &fetchBuffer{
		arraySize: arraySize,
		cols:      make([]*fetchColumn, len(s.cols)),
	}
	for i, info := range s.cols {
		defined, ok := explicit[i]
		if !ok {
			defined = info.OracleType.FetchType()
		}
		wire, native, size, sizeIsBytes, err := defined.VarParams()
		if err != nil {
			fb.close()
			return nil, &Error{Kind: ErrKindDataTypeNotSupported,
				Message: err.Error(), Column: info.Name}
		}
		varH, data, err := s.conn.api.NewVar(s.conn.h, wire, native, arraySize, size, sizeIsBytes)
		if err != nil {
			fb.close()
			return nil, wrapNative(err, "allocate fetch buffer")
		}
		if err := s.conn.api.DefineColumn(s.h, i+1, varH); err != nil {
			varH.Close()
			fb.close()
			return nil, wrapNative(err, "define column")
		}
		fb.cols[i] = &fetchColumn{
			info:    info,
			defined: defined,
			native:  native,
			varH:    varH,
			data:    data,
		}
	}
	return fb, nil
}

// advance moves to the next row, issuing a bulk fetch when the current
// batch is exhausted. It reports false when the result set ends.
func (fb *fetchBuffer) advance(ctx context.Context, s *Statement) (bool, error) {
	if fb.cursor < fb.fill {
		fb.cursor++
		return true, nil
	}
	if fb.done {
		fb.exhausted = true
		return false, nil
	}
	fetched, more, err := s.conn.api.FetchRows(ctx, s.h, fb.arraySize)
	if err != nil {
		return false, wrapNative(err, "fetch rows")
	}
	fb.nativeFetches++
	fb.fill = fetched
	fb.cursor = 0
	fb.done = !more
	if fetched == 0 {
		fb.exhausted = true
		return false, nil
	}
	fb.cursor = 1
	return true, nil
}

// rowIndex is the buffer index of the current row. Valid only after a
// successful advance.
func (fb *fetchBuffer) rowIndex() uint32 {
	return fb.cursor - 1
}

// cell returns a Value viewing the current row's cell for one column.
// The view aliases the reused buffer.
func (fb *fetchBuffer) cell(s *Statement, col int) *Value {
	fc := fb.cols[col]
	return &Value{
		api:     s.conn.api,
		oraType: fc.defined,
		data:    &fc.data[fb.rowIndex()],
	}
}

// reset discards buffered rows ahead of a re-execute. Buffers stay
// allocated; only the cursor state clears.
func (fb *fetchBuffer) reset() {
	fb.fill = 0
	fb.cursor = 0
	fb.done = false
	fb.exhausted = false
}

// sameShape reports whether the buffer can be reused for a result set
// with the given column metadata.
func (fb *fetchBuffer) sameShape(cols []ColumnInfo) bool {
	if len(fb.cols) != len(cols) {
		return false
	}
	for i, fc := range fb.cols {
		if fc.info.OracleType != cols[i].OracleType {
			return false
		}
	}
	return true
}

// close releases every column buffer. Idempotent.
func (fb *fetchBuffer) close() {
	for _, fc := range fb.cols {
		if fc != nil && fc.varH != nil {
			fc.varH.Close()
			fc.varH = nil
		}
	}
}
