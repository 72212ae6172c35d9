// Package dpitest provides an in-memory implementation of the dpi.API
// boundary for tests. It is scripted, not a SQL engine: tests register
// result sets or row counts per statement text, and the fake plays them
// back through the same handle/variable/fetch protocol the production
// native layer uses, including bind echo, bulk-fetch batching, LOB
// locators, and error injection.
package dpitest

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/leapstack-labs/oraq/pkg/dpi"
)

// QueryScript produces a result set for one execution. binds holds the
// current bind values, positional order; the returned rows are engine
// values that the fake converts to whatever representation the driver
// defined each column as.
type QueryScript func(binds []dpi.Data) ([]dpi.ColumnTypeInfo, [][]dpi.Data)

// Fake implements dpi.API in memory.
type Fake struct {
	mu sync.Mutex

	conns map[string]*fakeConn
	stmts map[string]*fakeStmt
	vars  map[string]*fakeVar
	lobs  map[string][]byte

	queries map[string]QueryScript
	execs   map[string]uint64

	// failNext holds one injected error per action name, consumed on
	// the next matching call.
	failNext map[string]*dpi.ErrorInfo

	lastErr *dpi.ErrorInfo

	// FetchRowsCalls counts FetchRows round trips across all statements.
	FetchRowsCalls int
	// NewVarCalls counts variable buffer allocations.
	NewVarCalls int

	serverVersion dpi.VersionInfo
}

type fakeConn struct {
	params   dpi.ConnParams
	inTx     bool
	commits  int
	rollback int
}

type fakeStmt struct {
	conn      *fakeConn
	sql       string
	info      dpi.StmtInfo
	bindNames []string
	binds     map[int]*fakeVar
	defines   map[int]*fakeVar

	cols     []dpi.ColumnTypeInfo
	rows     [][]dpi.Data
	rowPos   int
	rowCount uint64
	executed bool
}

type fakeVar struct {
	oracleType dpi.OracleTypeNum
	nativeType dpi.NativeTypeNum
	size       uint32
	data       []dpi.Data // shared with the driver
}

// New returns an initialized fake. It also performs the process-wide
// dpi.Init so tests can allocate handles immediately.
func New() *Fake {
	_ = dpi.Init()
	return &Fake{
		conns:         make(map[string]*fakeConn),
		stmts:         make(map[string]*fakeStmt),
		vars:          make(map[string]*fakeVar),
		lobs:          make(map[string][]byte),
		queries:       make(map[string]QueryScript),
		execs:         make(map[string]uint64),
		failNext:      make(map[string]*dpi.ErrorInfo),
		serverVersion: dpi.VersionInfo{Version: 23, Release: 4},
	}
}

// RegisterQuery scripts a fixed result set for a statement text.
func (f *Fake) RegisterQuery(sql string, cols []dpi.ColumnTypeInfo, rows [][]dpi.Data) {
	f.RegisterQueryFunc(sql, func([]dpi.Data) ([]dpi.ColumnTypeInfo, [][]dpi.Data) {
		return cols, rows
	})
}

// RegisterQueryFunc scripts a bind-dependent result set for a statement
// text.
func (f *Fake) RegisterQueryFunc(sql string, script QueryScript) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries[normalizeSQL(sql)] = script
}

// RegisterExec scripts the affected-row count for a non-query statement.
func (f *Fake) RegisterExec(sql string, rowsAffected uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs[normalizeSQL(sql)] = rowsAffected
}

// FailNext injects an error for the next call whose action matches
// (one of "prepare", "execute", "fetch", "commit", "rollback", "ping").
func (f *Fake) FailNext(action string, info *dpi.ErrorInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext[action] = info
}

// NewLob stores content and returns a locator handle for scripting LOB
// cells.
func (f *Fake) NewLob(content []byte) *dpi.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, err := dpi.NewHandle(dpi.HandleLOB, nil)
	if err != nil {
		panic(err)
	}
	f.lobs[h.ID()] = append([]byte(nil), content...)
	return h
}

func (f *Fake) takeFailure(action string) *dpi.ErrorInfo {
	if info, ok := f.failNext[action]; ok {
		delete(f.failNext, action)
		f.lastErr = info
		return info
	}
	return nil
}

func normalizeSQL(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}

// Connect implements dpi.API.
func (f *Fake) Connect(ctx context.Context, params dpi.ConnParams) (*dpi.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fc := &fakeConn{params: params}
	h, err := dpi.NewHandle(dpi.HandleConn, nil)
	if err != nil {
		return nil, err
	}
	f.conns[h.ID()] = fc
	return h, nil
}

// CloseConn implements dpi.API.
func (f *Fake) CloseConn(conn *dpi.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.conns, conn.ID())
	return nil
}

// Ping implements dpi.API.
func (f *Fake) Ping(ctx context.Context, conn *dpi.Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if info := f.takeFailure("ping"); info != nil {
		return info
	}
	if _, ok := f.conns[conn.ID()]; !ok {
		return f.unknownHandle(conn)
	}
	return nil
}

// Commit implements dpi.API.
func (f *Fake) Commit(ctx context.Context, conn *dpi.Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if info := f.takeFailure("commit"); info != nil {
		return info
	}
	fc, ok := f.conns[conn.ID()]
	if !ok {
		return f.unknownHandle(conn)
	}
	fc.commits++
	fc.inTx = false
	return nil
}

// Rollback implements dpi.API.
func (f *Fake) Rollback(ctx context.Context, conn *dpi.Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if info := f.takeFailure("rollback"); info != nil {
		return info
	}
	fc, ok := f.conns[conn.ID()]
	if !ok {
		return f.unknownHandle(conn)
	}
	fc.rollback++
	fc.inTx = false
	return nil
}

// ServerVersion implements dpi.API.
func (f *Fake) ServerVersion(conn *dpi.Handle) (dpi.VersionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.conns[conn.ID()]; !ok {
		return dpi.VersionInfo{}, f.unknownHandle(conn)
	}
	return f.serverVersion, nil
}

var bindPlaceholderRe = regexp.MustCompile(`:([A-Za-z][A-Za-z0-9_]*|[0-9]+)`)

// Prepare implements dpi.API. Statement classification mirrors the
// engine: the leading keyword decides the kind.
func (f *Fake) Prepare(ctx context.Context, conn *dpi.Handle, sql, tag string) (*dpi.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if info := f.takeFailure("prepare"); info != nil {
		return nil, info
	}
	fc, ok := f.conns[conn.ID()]
	if !ok {
		return nil, f.unknownHandle(conn)
	}

	st := &fakeStmt{
		conn:    fc,
		sql:     normalizeSQL(sql),
		info:    classify(sql),
		binds:   make(map[int]*fakeVar),
		defines: make(map[int]*fakeVar),
	}
	seen := make(map[string]bool)
	for _, m := range bindPlaceholderRe.FindAllStringSubmatch(sql, -1) {
		name := strings.ToUpper(m[1])
		if !seen[name] {
			seen[name] = true
			st.bindNames = append(st.bindNames, name)
		}
	}

	h, err := dpi.NewHandle(dpi.HandleStmt, nil)
	if err != nil {
		return nil, err
	}
	f.stmts[h.ID()] = st
	return h, nil
}

func classify(sql string) dpi.StmtInfo {
	fields := strings.Fields(strings.ToUpper(sql))
	if len(fields) == 0 {
		return dpi.StmtInfo{StatementType: dpi.StmtUnknown}
	}
	var t dpi.StmtTypeNum
	switch fields[0] {
	case "SELECT", "WITH":
		t = dpi.StmtSelect
	case "INSERT":
		t = dpi.StmtInsert
	case "UPDATE":
		t = dpi.StmtUpdate
	case "DELETE":
		t = dpi.StmtDelete
	case "MERGE":
		t = dpi.StmtMerge
	case "CREATE":
		t = dpi.StmtCreate
	case "DROP":
		t = dpi.StmtDrop
	case "ALTER":
		t = dpi.StmtAlter
	case "BEGIN":
		t = dpi.StmtBegin
	case "DECLARE":
		t = dpi.StmtDeclare
	case "CALL":
		t = dpi.StmtCall
	case "COMMIT":
		t = dpi.StmtCommit
	case "ROLLBACK":
		t = dpi.StmtRollback
	case "EXPLAIN":
		t = dpi.StmtExplainPlan
	default:
		t = dpi.StmtUnknown
	}
	info := dpi.StmtInfo{StatementType: t}
	switch t {
	case dpi.StmtSelect, dpi.StmtExplainPlan:
		info.IsQuery = t == dpi.StmtSelect
	case dpi.StmtInsert, dpi.StmtUpdate, dpi.StmtDelete, dpi.StmtMerge:
		info.IsDML = true
		info.IsReturning = strings.Contains(strings.ToUpper(sql), " RETURNING ")
	case dpi.StmtCreate, dpi.StmtDrop, dpi.StmtAlter:
		info.IsDDL = true
	case dpi.StmtBegin, dpi.StmtDeclare, dpi.StmtCall:
		info.IsPLSQL = true
	}
	return info
}

// StmtInfo implements dpi.API.
func (f *Fake) StmtInfo(stmt *dpi.Handle) (dpi.StmtInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stmts[stmt.ID()]
	if !ok {
		return dpi.StmtInfo{}, f.unknownHandle(stmt)
	}
	return st.info, nil
}

// BindCount implements dpi.API.
func (f *Fake) BindCount(stmt *dpi.Handle) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stmts[stmt.ID()]
	if !ok {
		return 0, f.unknownHandle(stmt)
	}
	return len(st.bindNames), nil
}

// BindNames implements dpi.API.
func (f *Fake) BindNames(stmt *dpi.Handle) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stmts[stmt.ID()]
	if !ok {
		return nil, f.unknownHandle(stmt)
	}
	return append([]string(nil), st.bindNames...), nil
}

// NewVar implements dpi.API. The returned Data slice is shared: the fake
// writes fetched rows into it and reads bound values from it, exactly as
// the production layer shares the dpiData array.
func (f *Fake) NewVar(conn *dpi.Handle, oracleType dpi.OracleTypeNum, nativeType dpi.NativeTypeNum, arraySize, size uint32, sizeIsBytes bool) (*dpi.Handle, []dpi.Data, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.conns[conn.ID()]; !ok {
		return nil, nil, f.unknownHandle(conn)
	}
	if arraySize == 0 {
		arraySize = 1
	}
	fv := &fakeVar{
		oracleType: oracleType,
		nativeType: nativeType,
		size:       size,
		data:       make([]dpi.Data, arraySize),
	}
	for i := range fv.data {
		fv.data[i] = dpi.Data{NativeType: nativeType, IsNull: true}
	}
	h, err := dpi.NewHandle(dpi.HandleVar, nil)
	if err != nil {
		return nil, nil, err
	}
	f.vars[h.ID()] = fv
	f.NewVarCalls++
	return h, fv.data, nil
}

// BindByPos implements dpi.API.
func (f *Fake) BindByPos(stmt *dpi.Handle, pos int, v *dpi.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stmts[stmt.ID()]
	if !ok {
		return f.unknownHandle(stmt)
	}
	fv, ok := f.vars[v.ID()]
	if !ok {
		return f.unknownHandle(v)
	}
	st.binds[pos-1] = fv
	return nil
}

// BindByName implements dpi.API.
func (f *Fake) BindByName(stmt *dpi.Handle, name string, v *dpi.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stmts[stmt.ID()]
	if !ok {
		return f.unknownHandle(stmt)
	}
	fv, ok := f.vars[v.ID()]
	if !ok {
		return f.unknownHandle(v)
	}
	want := strings.ToUpper(strings.TrimPrefix(name, ":"))
	for i, n := range st.bindNames {
		if n == want {
			st.binds[i] = fv
			return nil
		}
	}
	info := &dpi.ErrorInfo{Code: 1036, Message: fmt.Sprintf("illegal variable name %q", name), FnName: "dpiStmt_bindByName"}
	f.lastErr = info
	return info
}

// DefineColumn implements dpi.API.
func (f *Fake) DefineColumn(stmt *dpi.Handle, col int, v *dpi.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stmts[stmt.ID()]
	if !ok {
		return f.unknownHandle(stmt)
	}
	fv, ok := f.vars[v.ID()]
	if !ok {
		return f.unknownHandle(v)
	}
	st.defines[col-1] = fv
	return nil
}

// Execute implements dpi.API.
func (f *Fake) Execute(ctx context.Context, stmt *dpi.Handle, mode dpi.ExecMode) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if info := f.takeFailure("execute"); info != nil {
		return 0, false, info
	}
	st, ok := f.stmts[stmt.ID()]
	if !ok {
		return 0, false, f.unknownHandle(stmt)
	}

	st.executed = true
	st.rowPos = 0

	if st.info.IsQuery {
		script, ok := f.queries[st.sql]
		if !ok {
			info := &dpi.ErrorInfo{Code: 942, Message: "table or view does not exist", FnName: "dpiStmt_execute", Offset: 0}
			f.lastErr = info
			return 0, false, info
		}
		binds := make([]dpi.Data, len(st.bindNames))
		for i := range binds {
			if fv, ok := st.binds[i]; ok && len(fv.data) > 0 {
				binds[i] = fv.data[0]
			} else {
				binds[i] = dpi.Data{IsNull: true}
			}
		}
		st.cols, st.rows = script(binds)
		st.rowCount = 0
		return len(st.cols), false, nil
	}

	if n, ok := f.execs[st.sql]; ok {
		st.rowCount = n
	} else {
		st.rowCount = 0
	}
	if mode&dpi.ModeExecCommitOnSuccess != 0 {
		st.conn.commits++
	} else {
		st.conn.inTx = st.info.IsDML
	}
	return 0, false, nil
}

// QueryInfo implements dpi.API.
func (f *Fake) QueryInfo(stmt *dpi.Handle, col int) (dpi.ColumnTypeInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stmts[stmt.ID()]
	if !ok {
		return dpi.ColumnTypeInfo{}, f.unknownHandle(stmt)
	}
	if col < 1 || col > len(st.cols) {
		info := &dpi.ErrorInfo{Message: fmt.Sprintf("invalid column position %d", col), FnName: "dpiStmt_getQueryInfo"}
		f.lastErr = info
		return dpi.ColumnTypeInfo{}, info
	}
	return st.cols[col-1], nil
}

// FetchRows implements dpi.API. Rows are converted to each defined
// variable's native representation as they are copied into its buffer.
func (f *Fake) FetchRows(ctx context.Context, stmt *dpi.Handle, maxRows uint32) (uint32, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if info := f.takeFailure("fetch"); info != nil {
		return 0, false, info
	}
	st, ok := f.stmts[stmt.ID()]
	if !ok {
		return 0, false, f.unknownHandle(stmt)
	}
	f.FetchRowsCalls++

	remaining := len(st.rows) - st.rowPos
	n := int(maxRows)
	if n > remaining {
		n = remaining
	}
	for r := 0; r < n; r++ {
		row := st.rows[st.rowPos+r]
		for c := range st.cols {
			fv, ok := st.defines[c]
			if !ok || r >= len(fv.data) {
				continue
			}
			converted, err := convertData(row[c], fv.nativeType)
			if err != nil {
				f.lastErr = err
				return 0, false, err
			}
			fv.data[r] = converted
		}
	}
	st.rowPos += n
	return uint32(n), st.rowPos < len(st.rows), nil
}

// RowCount implements dpi.API.
func (f *Fake) RowCount(stmt *dpi.Handle) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stmts[stmt.ID()]
	if !ok {
		return 0, f.unknownHandle(stmt)
	}
	return st.rowCount, nil
}

// LobSize implements dpi.API.
func (f *Fake) LobSize(lob *dpi.Handle) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.lobs[lob.ID()]
	if !ok {
		return 0, f.unknownHandle(lob)
	}
	return uint64(len(content)), nil
}

// LobRead implements dpi.API.
func (f *Fake) LobRead(ctx context.Context, lob *dpi.Handle, offset, length uint64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.lobs[lob.ID()]
	if !ok {
		return nil, f.unknownHandle(lob)
	}
	if offset < 1 {
		offset = 1
	}
	start := offset - 1
	if start > uint64(len(content)) {
		return []byte{}, nil
	}
	end := start + length
	if end > uint64(len(content)) {
		end = uint64(len(content))
	}
	return append([]byte(nil), content[start:end]...), nil
}

// AttrGet implements dpi.API.
func (f *Fake) AttrGet(h *dpi.Handle, attr uint32) ([]byte, error) {
	return nil, &dpi.ErrorInfo{Message: fmt.Sprintf("attribute %d not supported", attr), FnName: "dpiHandle_getAttr"}
}

// AttrSet implements dpi.API.
func (f *Fake) AttrSet(h *dpi.Handle, attr uint32, value []byte) error {
	return nil
}

// CloseStmt implements dpi.API.
func (f *Fake) CloseStmt(stmt *dpi.Handle, tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stmts, stmt.ID())
	return nil
}

// ReleaseVar implements dpi.API.
func (f *Fake) ReleaseVar(v *dpi.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.vars, v.ID())
	return nil
}

// LastError implements dpi.API.
func (f *Fake) LastError() *dpi.ErrorInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *Fake) unknownHandle(h *dpi.Handle) *dpi.ErrorInfo {
	info := &dpi.ErrorInfo{Message: fmt.Sprintf("unknown %s", h), FnName: "dpitest"}
	f.lastErr = info
	return info
}

// convertData adapts an engine value to the native representation the
// driver defined the column as. This is where the integer fast path and
// the decimal-text path meet: a numeric engine value lands as int64 or
// as text depending on the define.
func convertData(src dpi.Data, want dpi.NativeTypeNum) (dpi.Data, *dpi.ErrorInfo) {
	if src.IsNull {
		return dpi.Data{NativeType: want, IsNull: true}, nil
	}
	if src.NativeType == want {
		out := src
		if out.Bytes != nil {
			out.Bytes = append([]byte(nil), out.Bytes...)
		}
		return out, nil
	}
	var out dpi.Data
	switch want {
	case dpi.NativeInt64:
		switch src.NativeType {
		case dpi.NativeBytes:
			n, err := strconv.ParseInt(strings.TrimSpace(string(src.Bytes)), 10, 64)
			if err != nil {
				return out, &dpi.ErrorInfo{Message: fmt.Sprintf("cannot convert %q to int64", src.Bytes), FnName: "dpitest.convertData"}
			}
			out.SetInt64(n)
			return out, nil
		case dpi.NativeUint64:
			out.SetInt64(int64(src.Uint64))
			return out, nil
		case dpi.NativeDouble:
			out.SetInt64(int64(src.Double))
			return out, nil
		}
	case dpi.NativeBytes:
		switch src.NativeType {
		case dpi.NativeInt64:
			out.SetBytes([]byte(strconv.FormatInt(src.Int64, 10)))
			return out, nil
		case dpi.NativeUint64:
			out.SetBytes([]byte(strconv.FormatUint(src.Uint64, 10)))
			return out, nil
		case dpi.NativeDouble:
			out.SetBytes([]byte(strconv.FormatFloat(src.Double, 'g', -1, 64)))
			return out, nil
		}
	case dpi.NativeDouble:
		switch src.NativeType {
		case dpi.NativeInt64:
			out.SetDouble(float64(src.Int64))
			return out, nil
		case dpi.NativeBytes:
			fl, err := strconv.ParseFloat(strings.TrimSpace(string(src.Bytes)), 64)
			if err != nil {
				return out, &dpi.ErrorInfo{Message: fmt.Sprintf("cannot convert %q to double", src.Bytes), FnName: "dpitest.convertData"}
			}
			out.SetDouble(fl)
			return out, nil
		}
	}
	return out, &dpi.ErrorInfo{
		Message: fmt.Sprintf("no conversion from native type %d to %d", src.NativeType, want),
		FnName:  "dpitest.convertData",
	}
}
