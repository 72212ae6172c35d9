package driver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/oraq/pkg/dpi"
	"github.com/leapstack-labs/oraq/pkg/oratype"
)

// stmtState tracks where a statement is in its
// prepare/bind/execute/fetch/close lifecycle.
type stmtState int

const (
	statePrepared stmtState = iota
	stateExecuted
	stateFetching
	stateClosed
)

// ColumnInfo describes one result column as the engine reported it.
// Names keep the engine's own case folding: unquoted identifiers arrive
// upper-cased.
type ColumnInfo struct {
	Name       string
	OracleType oratype.OracleType
	Nullable   bool
}

// String renders the column in DDL form.
func (ci ColumnInfo) String() string {
	if ci.Nullable {
		return fmt.Sprintf("%s %s", ci.Name, ci.OracleType)
	}
	return fmt.Sprintf("%s %s NOT NULL", ci.Name, ci.OracleType)
}

// Statement is a prepared statement: it owns its native handle, its bind
// slots, and (for queries) the fetch buffer. A Statement may move
// between goroutines but must not be used by two at once.
type Statement struct {
	conn *Connection
	h    *dpi.Handle
	sql  string
	tag  string

	kind oratype.StatementKind
	info dpi.StmtInfo

	mu           sync.Mutex
	state        stmtState
	bindMode     bindMode
	lastBindMode bindMode
	binds        []*bindSlot
	bindNames    []string

	cols            []ColumnInfo
	colIndex        map[string]int
	explicitDefines map[int]oratype.OracleType
	fetch           *fetchBuffer
	fetchArraySize  uint32

	rowsAffected    uint64
	implicitResults bool

	logger *slog.Logger
}

// StmtOption configures a prepared statement.
type StmtOption func(*Statement)

// WithTag sets the statement-cache tag used at prepare and close.
func WithTag(tag string) StmtOption {
	return func(s *Statement) { s.tag = tag }
}

// WithFetchArraySize overrides the rows-per-round-trip batch size for
// this statement.
func WithFetchArraySize(n uint32) StmtOption {
	return func(s *Statement) { s.fetchArraySize = n }
}

func (s *Statement) checkOpen() error {
	if s.state == stateClosed {
		return newError(ErrKindStatementClosed, "statement is closed")
	}
	return nil
}

// Kind reports the statement's classification.
func (s *Statement) Kind() oratype.StatementKind { return s.kind }

// IsQuery reports whether the statement returns a result set.
func (s *Statement) IsQuery() bool { return s.info.IsQuery }

// IsDML reports whether the statement modifies rows.
func (s *Statement) IsDML() bool { return s.info.IsDML }

// IsDDL reports whether the statement changes schema objects.
func (s *Statement) IsDDL() bool { return s.info.IsDDL }

// IsPLSQL reports whether the statement is a PL/SQL block or call.
func (s *Statement) IsPLSQL() bool { return s.info.IsPLSQL }

// HasReturningClause reports whether the DML carries a RETURNING clause.
func (s *Statement) HasReturningClause() bool { return s.info.IsReturning }

// SQL returns the statement text as prepared.
func (s *Statement) SQL() string { return s.sql }

// BindCount reports the number of placeholders in the SQL.
func (s *Statement) BindCount() int { return len(s.binds) }

// BindNames reports the distinct placeholder names, upper-cased by the
// engine, in order of first appearance.
func (s *Statement) BindNames() []string {
	return append([]string(nil), s.bindNames...)
}

// Columns reports result column metadata. Populated after the first
// execute of a query.
func (s *Statement) Columns() []ColumnInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ColumnInfo(nil), s.cols...)
}

// RowsAffected reports the row count of the last execute. Reset on each
// re-execute.
func (s *Statement) RowsAffected() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowsAffected
}

// HasMoreImplicitResults reports whether the last execute produced
// implicit result sets.
func (s *Statement) HasMoreImplicitResults() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.implicitResults
}

// DefineColumn fixes the fetch representation of one result column
// (zero-based) ahead of the first fetch, overriding the implicit
// definition derived from engine metadata. The explicit type must be one
// a buffer can be built for.
func (s *Statement) DefineColumn(col int, t oratype.OracleType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if !s.info.IsQuery {
		return newError(ErrKindInvalidOperation,
			"cannot define columns on a %s statement", s.kind)
	}
	if s.fetch != nil {
		return newError(ErrKindInvalidOperation,
			"cannot redefine column %d after fetching started", col)
	}
	if _, _, _, _, err := t.VarParams(); err != nil {
		return newError(ErrKindDataTypeNotSupported, "%s", err)
	}
	if s.explicitDefines == nil {
		s.explicitDefines = make(map[int]oratype.OracleType)
	}
	s.explicitDefines[col] = t
	return nil
}

// Execute sends the statement to the engine with the current bind shape.
// For queries it also retrieves column metadata; row-count and
// implicit-result bookkeeping reset per execute. Rebinding and
// re-executing an already-executed statement is permitted any number of
// times.
func (s *Statement) Execute(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.applyBinds(); err != nil {
		return err
	}
	numCols, implicit, err := s.conn.api.Execute(ctx, s.h, dpi.ModeExecDefault)
	if err != nil {
		// A cancelled or failed execute leaves the row position
		// undefined; the caller re-executes before fetching again.
		if s.fetch != nil {
			s.fetch.reset()
		}
		s.state = statePrepared
		return wrapNative(err, "execute")
	}

	s.implicitResults = implicit
	s.rowsAffected = 0
	if !s.info.IsQuery {
		if n, err := s.conn.api.RowCount(s.h); err == nil {
			s.rowsAffected = n
		}
	}

	if s.info.IsQuery {
		if err := s.loadColumnMetadata(numCols); err != nil {
			return err
		}
	}

	s.state = stateExecuted
	s.lastBindMode = s.bindMode
	s.bindMode = bindModeNone
	s.logger.Debug("statement executed",
		"kind", s.kind.String(),
		"columns", numCols,
		"rows_affected", s.rowsAffected)
	return nil
}

// loadColumnMetadata refreshes column info after execute and decides
// whether the existing fetch buffer can be reused.
func (s *Statement) loadColumnMetadata(numCols int) error {
	cols := make([]ColumnInfo, numCols)
	index := make(map[string]int, numCols)
	for i := 0; i < numCols; i++ {
		info, err := s.conn.api.QueryInfo(s.h, i+1)
		if err != nil {
			return wrapNative(err, "column metadata")
		}
		t, err := oratype.FromColumnInfo(info)
		if err != nil {
			return &Error{Kind: ErrKindDataTypeNotSupported,
				Message: err.Error(), Column: info.Name}
		}
		cols[i] = ColumnInfo{Name: info.Name, OracleType: t, Nullable: info.NullOK}
		index[info.Name] = i
	}
	if s.fetch != nil {
		if s.fetch.sameShape(cols) {
			s.fetch.reset()
		} else {
			s.fetch.close()
			s.fetch = nil
		}
	}
	s.cols = cols
	s.colIndex = index
	return nil
}

// Next advances to the next result row, bulk-fetching a batch from the
// native layer when the buffer runs dry. It reports false at the end of
// the result set. Only query statements may fetch.
func (s *Statement) Next(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	if !s.info.IsQuery {
		return false, newError(ErrKindInvalidOperation,
			"cannot fetch from a %s statement", s.kind)
	}
	if s.state != stateExecuted && s.state != stateFetching {
		return false, newError(ErrKindInvalidOperation,
			"statement must be executed before fetching")
	}
	if s.fetch == nil {
		fb, err := newFetchBuffer(s, s.fetchArraySize, s.explicitDefines)
		if err != nil {
			return false, err
		}
		s.fetch = fb
	}
	ok, err := s.fetch.advance(ctx, s)
	if err != nil {
		return false, err
	}
	if ok {
		s.state = stateFetching
	}
	return ok, nil
}

// Row detaches the current row from the fetch buffer: every cell is
// deep-copied, so the Row stays valid and unchanged across later fetches
// and after the statement advances. Valid after a successful Next.
func (s *Statement) Row() (*Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if s.state != stateFetching || s.fetch == nil || s.fetch.fill == 0 || s.fetch.exhausted {
		return nil, ErrNoMoreData
	}
	values := make([]*Value, len(s.fetch.cols))
	for i := range s.fetch.cols {
		values[i] = s.fetch.cell(s, i).detach()
	}
	return &Row{
		cols:   s.cols,
		index:  s.colIndex,
		values: values,
	}, nil
}

// FetchCount reports the number of native bulk-fetch round trips issued
// since the last (re-)execute allocated or reset the buffer.
func (s *Statement) FetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetch == nil {
		return 0
	}
	return s.fetch.nativeFetches
}

// Close releases the bind buffers, the fetch buffer, and the native
// statement handle. It is idempotent: closing twice is a no-op. All
// operations after Close fail with a statement-closed error.
func (s *Statement) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateClosed {
		return nil
	}
	s.state = stateClosed
	for _, slot := range s.binds {
		slot.close()
	}
	if s.fetch != nil {
		s.fetch.close()
		s.fetch = nil
	}
	err := s.conn.api.CloseStmt(s.h, s.tag)
	s.h.Close()
	s.conn.forget(s)
	s.logger.Debug("statement closed", "sql", s.sql)
	if err != nil {
		return wrapNative(err, "close statement")
	}
	return nil
}
