package oratype

import "github.com/leapstack-labs/oraq/pkg/dpi"

// StatementKind classifies a prepared statement. The kind governs which
// operations are legal on it: only queries may fetch, only DML reports
// affected rows, and so on.
type StatementKind uint32

// Statement kinds.
const (
	StmtKindUnknown StatementKind = iota
	StmtKindSelect
	StmtKindInsert
	StmtKindUpdate
	StmtKindDelete
	StmtKindMerge
	StmtKindCreate
	StmtKindDrop
	StmtKindAlter
	StmtKindBegin
	StmtKindDeclare
	StmtKindCall
	StmtKindCommit
	StmtKindRollback
	StmtKindExplainPlan
)

// StatementKindFromNative maps the native layer's classification.
func StatementKindFromNative(n dpi.StmtTypeNum) StatementKind {
	switch n {
	case dpi.StmtSelect:
		return StmtKindSelect
	case dpi.StmtInsert:
		return StmtKindInsert
	case dpi.StmtUpdate:
		return StmtKindUpdate
	case dpi.StmtDelete:
		return StmtKindDelete
	case dpi.StmtMerge:
		return StmtKindMerge
	case dpi.StmtCreate:
		return StmtKindCreate
	case dpi.StmtDrop:
		return StmtKindDrop
	case dpi.StmtAlter:
		return StmtKindAlter
	case dpi.StmtBegin:
		return StmtKindBegin
	case dpi.StmtDeclare:
		return StmtKindDeclare
	case dpi.StmtCall:
		return StmtKindCall
	case dpi.StmtCommit:
		return StmtKindCommit
	case dpi.StmtRollback:
		return StmtKindRollback
	case dpi.StmtExplainPlan:
		return StmtKindExplainPlan
	default:
		return StmtKindUnknown
	}
}

// IsQuery reports whether the statement returns a result set.
func (k StatementKind) IsQuery() bool {
	return k == StmtKindSelect
}

// IsDML reports whether the statement is INSERT, UPDATE, DELETE or MERGE.
func (k StatementKind) IsDML() bool {
	switch k {
	case StmtKindInsert, StmtKindUpdate, StmtKindDelete, StmtKindMerge:
		return true
	}
	return false
}

// IsDDL reports whether the statement is CREATE, DROP or ALTER.
func (k StatementKind) IsDDL() bool {
	switch k {
	case StmtKindCreate, StmtKindDrop, StmtKindAlter:
		return true
	}
	return false
}

// IsPLSQL reports whether the statement is a PL/SQL block or call.
func (k StatementKind) IsPLSQL() bool {
	switch k {
	case StmtKindBegin, StmtKindDeclare, StmtKindCall:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (k StatementKind) String() string {
	switch k {
	case StmtKindSelect:
		return "SELECT"
	case StmtKindInsert:
		return "INSERT"
	case StmtKindUpdate:
		return "UPDATE"
	case StmtKindDelete:
		return "DELETE"
	case StmtKindMerge:
		return "MERGE"
	case StmtKindCreate:
		return "CREATE"
	case StmtKindDrop:
		return "DROP"
	case StmtKindAlter:
		return "ALTER"
	case StmtKindBegin:
		return "BEGIN"
	case StmtKindDeclare:
		return "DECLARE"
	case StmtKindCall:
		return "CALL"
	case StmtKindCommit:
		return "COMMIT"
	case StmtKindRollback:
		return "ROLLBACK"
	case StmtKindExplainPlan:
		return "EXPLAIN PLAN"
	default:
		return "UNKNOWN"
	}
}
