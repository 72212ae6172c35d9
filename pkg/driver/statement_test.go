package driver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/oraq/pkg/dpi"
	"github.com/leapstack-labs/oraq/pkg/driver"
	"github.com/leapstack-labs/oraq/pkg/oratype"
)

func TestPrepareClassifiesStatements(t *testing.T) {
	_, conn := newConn(t)
	ctx := context.Background()

	tests := []struct {
		sql     string
		kind    oratype.StatementKind
		isQuery bool
		isDML   bool
		isDDL   bool
		isPLSQL bool
	}{
		{"SELECT 1 FROM DUAL", oratype.StmtKindSelect, true, false, false, false},
		{"INSERT INTO T (A) VALUES (:1)", oratype.StmtKindInsert, false, true, false, false},
		{"UPDATE T SET A = :1", oratype.StmtKindUpdate, false, true, false, false},
		{"DELETE FROM T", oratype.StmtKindDelete, false, true, false, false},
		{"MERGE INTO T USING D ON (T.ID = D.ID) WHEN MATCHED THEN UPDATE SET A = 1", oratype.StmtKindMerge, false, true, false, false},
		{"CREATE TABLE T (A NUMBER)", oratype.StmtKindCreate, false, false, true, false},
		{"DROP TABLE T", oratype.StmtKindDrop, false, false, true, false},
		{"BEGIN NULL; END;", oratype.StmtKindBegin, false, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			s, err := conn.Prepare(ctx, tt.sql)
			require.NoError(t, err)
			defer func() { require.NoError(t, s.Close()) }()

			assert.Equal(t, tt.kind, s.Kind())
			assert.Equal(t, tt.isQuery, s.IsQuery())
			assert.Equal(t, tt.isDML, s.IsDML())
			assert.Equal(t, tt.isDDL, s.IsDDL())
			assert.Equal(t, tt.isPLSQL, s.IsPLSQL())
			assert.Equal(t, tt.sql, s.SQL())
		})
	}
}

func TestPrepareDiscoversBindNames(t *testing.T) {
	_, conn := newConn(t)
	s, err := conn.Prepare(context.Background(),
		"SELECT * FROM emp WHERE deptno = :dept AND sal > :minsal AND job = :dept")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	// Repeated placeholders count once; names arrive upper-cased.
	assert.Equal(t, 2, s.BindCount())
	assert.Equal(t, []string{"DEPT", "MINSAL"}, s.BindNames())
}

func TestReturningClauseDetected(t *testing.T) {
	_, conn := newConn(t)
	s, err := conn.Prepare(context.Background(),
		"INSERT INTO T (A) VALUES (:1) RETURNING ID INTO :2")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()
	assert.True(t, s.HasReturningClause())
}

func TestFetchFromNonQueryFails(t *testing.T) {
	fake, conn := newConn(t)
	fake.RegisterExec("CREATE TABLE T (A NUMBER)", 0)

	s, err := conn.Prepare(context.Background(), "CREATE TABLE T (A NUMBER)")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	require.NoError(t, s.Execute(context.Background()))
	_, err = s.Next(context.Background())
	assert.True(t, driver.IsKind(err, driver.ErrKindInvalidOperation))
}

func TestFetchBeforeExecuteFails(t *testing.T) {
	_, conn := newConn(t)
	s, err := conn.Prepare(context.Background(), "SELECT 1 FROM DUAL")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	_, err = s.Next(context.Background())
	assert.True(t, driver.IsKind(err, driver.ErrKindInvalidOperation))
}

func TestStatementCloseIsIdempotent(t *testing.T) {
	_, conn := newConn(t)
	s, err := conn.Prepare(context.Background(), "SELECT 1 FROM DUAL")
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	err = s.Execute(context.Background())
	assert.True(t, driver.IsKind(err, driver.ErrKindStatementClosed))
	err = s.Bind(1, 1)
	assert.True(t, driver.IsKind(err, driver.ErrKindStatementClosed))
	_, err = s.Row()
	assert.True(t, driver.IsKind(err, driver.ErrKindStatementClosed))
}

func TestColumnMetadataAfterExecute(t *testing.T) {
	fake, conn := newConn(t)
	fake.RegisterQuery("SELECT ID, NAME FROM EMP",
		[]dpi.ColumnTypeInfo{numberCol("ID", 10, 0), varcharCol("NAME", 100)},
		[][]dpi.Data{{int64Cell(1), textCell("KING")}})

	s, err := conn.Prepare(context.Background(), "SELECT ID, NAME FROM EMP")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	assert.Empty(t, s.Columns())
	require.NoError(t, s.Execute(context.Background()))

	cols := s.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, "ID", cols[0].Name)
	assert.Equal(t, oratype.Number(10, 0), cols[0].OracleType)
	assert.Equal(t, "NAME", cols[1].Name)
	assert.Equal(t, oratype.Varchar2(100), cols[1].OracleType)
	assert.True(t, cols[1].Nullable)
	assert.Equal(t, "NAME VARCHAR2(100)", cols[1].String())
}

func TestExecuteErrorLeavesStatementUsable(t *testing.T) {
	fake, conn := newConn(t)
	fake.RegisterQuery("SELECT N FROM T",
		[]dpi.ColumnTypeInfo{numberCol("N", 10, 0)},
		[][]dpi.Data{{int64Cell(9)}})

	s, err := conn.Prepare(context.Background(), "SELECT N FROM T")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	fake.FailNext("execute", &dpi.ErrorInfo{Code: 904, Message: "invalid identifier"})
	err = s.Execute(context.Background())
	require.Error(t, err)
	assert.True(t, driver.IsKind(err, driver.ErrKindNativeLayer))

	// Fetching without a successful execute stays illegal.
	_, err = s.Next(context.Background())
	assert.True(t, driver.IsKind(err, driver.ErrKindInvalidOperation))

	// The next execute succeeds and fetches normally.
	require.NoError(t, s.Execute(context.Background()))
	ok, err := s.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	row, err := s.Row()
	require.NoError(t, err)
	var n int64
	require.NoError(t, row.ScanIndex(0, &n))
	assert.Equal(t, int64(9), n)
}

func TestCancelledExecute(t *testing.T) {
	_, conn := newConn(t)
	s, err := conn.Prepare(context.Background(), "SELECT 1 FROM DUAL")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Execute(ctx)
	assert.True(t, driver.IsKind(err, driver.ErrKindCancelled))
}

func TestDefineColumnRules(t *testing.T) {
	fake, conn := newConn(t)
	fake.RegisterQuery("SELECT N FROM T",
		[]dpi.ColumnTypeInfo{numberCol("N", 38, 0)},
		[][]dpi.Data{{textCell("42")}})
	fake.RegisterExec("DELETE FROM T", 0)

	s, err := conn.Prepare(context.Background(), "SELECT N FROM T")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	// An explicit define overrides the decimal-text default for this
	// wide NUMBER column.
	require.NoError(t, s.DefineColumn(0, oratype.Int64Type()))
	require.NoError(t, s.Execute(context.Background()))
	ok, err := s.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	row, err := s.Row()
	require.NoError(t, err)
	var n int64
	require.NoError(t, row.ScanIndex(0, &n))
	assert.Equal(t, int64(42), n)

	// Redefining after fetching started is rejected.
	err = s.DefineColumn(0, oratype.Varchar2(10))
	assert.True(t, driver.IsKind(err, driver.ErrKindInvalidOperation))

	// Defining on a non-query is rejected.
	d, err := conn.Prepare(context.Background(), "DELETE FROM T")
	require.NoError(t, err)
	defer func() { require.NoError(t, d.Close()) }()
	err = d.DefineColumn(0, oratype.Int64Type())
	assert.True(t, driver.IsKind(err, driver.ErrKindInvalidOperation))
}

func TestWithTagPassedToStatementCache(t *testing.T) {
	_, conn := newConn(t)
	s, err := conn.Prepare(context.Background(), "SELECT 1 FROM DUAL", driver.WithTag("q1"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
}
