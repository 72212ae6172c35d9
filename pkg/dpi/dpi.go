// Package dpi defines the boundary with the native Oracle call layer.
//
// Everything below this package is an opaque collaborator: a handle-based
// C interface that can prepare statements, bind variables, execute, and
// bulk-fetch rows. This package does not implement the wire protocol; it
// specifies the narrow surface the driver core consumes (the API
// interface), the tagged datum exchanged across it (Data), structured
// error information (ErrorInfo), and owning handle wrappers whose release
// is guaranteed and idempotent (Handle).
//
// The concrete production implementation binds to the vendor client
// library via cgo. Tests use the in-memory implementation in
// internal/dpitest.
package dpi

import (
	"context"
	"errors"
	"sync/atomic"
)

// OracleTypeNum identifies a wire-level Oracle type as reported by the
// native layer in column metadata and requested when creating variables.
type OracleTypeNum uint32

// Wire-level Oracle type numbers.
const (
	TypeNone OracleTypeNum = iota
	TypeVarchar
	TypeNvarchar
	TypeChar
	TypeNchar
	TypeRowid
	TypeRaw
	TypeNativeFloat
	TypeNativeDouble
	TypeNativeInt
	TypeNativeUint
	TypeNumber
	TypeDate
	TypeTimestamp
	TypeTimestampTZ
	TypeTimestampLTZ
	TypeIntervalDS
	TypeIntervalYM
	TypeCLOB
	TypeNCLOB
	TypeBLOB
	TypeBFILE
	TypeStmt
	TypeBoolean
	TypeObject
	TypeLongVarchar
	TypeLongRaw
	TypeJSON
	TypeXMLType
	TypeVector
)

// NativeTypeNum identifies the in-memory representation a variable buffer
// uses for one value. It is the tag of the Data union.
type NativeTypeNum uint32

// Native in-memory representations.
const (
	NativeNone NativeTypeNum = iota
	NativeInt64
	NativeUint64
	NativeFloat
	NativeDouble
	NativeBytes
	NativeTimestamp
	NativeIntervalDS
	NativeIntervalYM
	NativeLOB
	NativeObject
	NativeStmt
	NativeBoolean
	NativeRowid
	NativeJSON
	NativeVector
)

// StmtTypeNum is the native layer's statement classification, retrieved
// after a successful prepare.
type StmtTypeNum uint32

// Statement type numbers.
const (
	StmtUnknown StmtTypeNum = iota
	StmtSelect
	StmtUpdate
	StmtDelete
	StmtInsert
	StmtCreate
	StmtDrop
	StmtAlter
	StmtBegin
	StmtDeclare
	StmtCall
	StmtMerge
	StmtExplainPlan
	StmtCommit
	StmtRollback
)

// ExecMode selects execution behavior for Execute.
type ExecMode uint32

// Execution modes.
const (
	ModeExecDefault ExecMode = 0
	// ModeExecCommitOnSuccess commits the transaction when the execute
	// round trip succeeds.
	ModeExecCommitOnSuccess ExecMode = 1 << iota
)

// StmtInfo describes a prepared statement: its classification and the
// convenience flags derived from it by the native layer.
type StmtInfo struct {
	StatementType StmtTypeNum
	IsQuery       bool
	IsPLSQL       bool
	IsDDL         bool
	IsDML         bool
	IsReturning   bool
}

// ColumnTypeInfo is the per-column metadata reported by the engine after
// executing a query.
type ColumnTypeInfo struct {
	Name          string
	OracleType    OracleTypeNum
	DefaultNative NativeTypeNum
	DBSizeInBytes uint32
	SizeInChars   uint32
	Precision     int16
	Scale         int8
	FsPrecision   uint8
	NullOK        bool

	// Populated only for the corresponding OracleType.
	ObjectTypeName  string
	VectorDimension uint32
	VectorFormat    uint8
}

// ConnParams carries what the native layer needs to establish a session.
// Parsing and storage of these values is owned by the caller's
// configuration layer.
type ConnParams struct {
	Username      string
	Password      string
	ConnectString string
	// CallTimeout bounds each native round trip in milliseconds.
	// Zero means no timeout.
	CallTimeout uint32
	// StmtCacheSize is the statement cache capacity, in statements.
	StmtCacheSize uint32
	// PrefetchRows is the row prefetch count applied to statements on
	// this session. Zero keeps the client library default.
	PrefetchRows uint32
}

// VersionInfo is the five-part Oracle version reported for the client
// library or a connected server.
type VersionInfo struct {
	Version     int
	Release     int
	Update      int
	PortRelease int
	PortUpdate  int
}

// API is the full surface the driver core requires from the native call
// layer. All round-trip calls block until the native layer returns and
// honor ctx cancellation by returning an error with ErrorInfo describing
// the interruption.
//
// Implementations must be safe for concurrent use across distinct
// statement handles on one connection; a single statement handle must not
// be used from two goroutines at once.
type API interface {
	// Connect establishes a session and returns its owning handle.
	Connect(ctx context.Context, params ConnParams) (*Handle, error)
	// CloseConn closes a session. The handle is unusable afterwards.
	CloseConn(conn *Handle) error
	// Ping issues a liveness round trip.
	Ping(ctx context.Context, conn *Handle) error
	// Commit commits the current transaction.
	Commit(ctx context.Context, conn *Handle) error
	// Rollback rolls back the current transaction.
	Rollback(ctx context.Context, conn *Handle) error
	// ServerVersion reports the connected server's version.
	ServerVersion(conn *Handle) (VersionInfo, error)

	// Prepare parses sql and returns a statement handle. tag selects a
	// statement-cache entry; empty means uncached.
	Prepare(ctx context.Context, conn *Handle, sql, tag string) (*Handle, error)
	// StmtInfo reports the prepared statement's classification.
	StmtInfo(stmt *Handle) (StmtInfo, error)
	// BindCount reports the number of bind placeholders in the SQL.
	BindCount(stmt *Handle) (int, error)
	// BindNames reports the distinct placeholder names, in order.
	BindNames(stmt *Handle) ([]string, error)

	// NewVar allocates a variable buffer of arraySize elements with the
	// given wire and native representation. The returned Data slice is
	// the buffer's backing array: the native layer writes fetched values
	// into it and reads bound values out of it.
	NewVar(conn *Handle, oracleType OracleTypeNum, nativeType NativeTypeNum, arraySize, size uint32, sizeIsBytes bool) (*Handle, []Data, error)
	// BindByPos associates a variable with a positional placeholder
	// (one-based).
	BindByPos(stmt *Handle, pos int, v *Handle) error
	// BindByName associates a variable with a named placeholder.
	BindByName(stmt *Handle, name string, v *Handle) error
	// DefineColumn associates a variable with a result column
	// (one-based) before the first fetch.
	DefineColumn(stmt *Handle, col int, v *Handle) error

	// Execute runs the statement. For queries it reports the number of
	// result columns; implicitResults is set when the statement produced
	// implicit result sets (DBMS_SQL.RETURN_RESULT).
	Execute(ctx context.Context, stmt *Handle, mode ExecMode) (numQueryColumns int, implicitResults bool, err error)
	// QueryInfo reports metadata for one result column (one-based).
	QueryInfo(stmt *Handle, col int) (ColumnTypeInfo, error)
	// FetchRows fills the defined variable buffers with up to maxRows
	// rows and reports how many arrived and whether more may follow.
	FetchRows(ctx context.Context, stmt *Handle, maxRows uint32) (rowsFetched uint32, moreRows bool, err error)
	// RowCount reports rows affected by the last execute.
	RowCount(stmt *Handle) (uint64, error)

	// LobSize reports the current length of a LOB in bytes (characters
	// for CLOB).
	LobSize(lob *Handle) (uint64, error)
	// LobRead reads up to length units starting at offset (one-based).
	LobRead(ctx context.Context, lob *Handle, offset, length uint64) ([]byte, error)

	// AttrGet reads a handle attribute in its raw encoding.
	AttrGet(h *Handle, attr uint32) ([]byte, error)
	// AttrSet writes a handle attribute in its raw encoding.
	AttrSet(h *Handle, attr uint32, value []byte) error

	// CloseStmt closes a statement, optionally returning it to the
	// statement cache under tag.
	CloseStmt(stmt *Handle, tag string) error
	// ReleaseVar releases a variable buffer.
	ReleaseVar(v *Handle) error

	// LastError reports detail for the most recent failed call on this
	// API. Calls that fail also return their *ErrorInfo directly.
	LastError() *ErrorInfo
}

// ErrNotInitialized is returned when handle allocation is attempted
// before Init.
var ErrNotInitialized = errors.New("dpi: client library not initialized (call dpi.Init first)")

var initialized atomic.Bool

// Init performs the process-wide initialization the native client library
// requires before any handle allocation. It must be called once, before
// the first Connect; later calls are no-ops.
func Init() error {
	initialized.Store(true)
	return nil
}

// Initialized reports whether Init has been called.
func Initialized() bool {
	return initialized.Load()
}

// resetInit is for tests only.
func resetInit() {
	initialized.Store(false)
}
