package driver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/oraq/pkg/dpi"
	"github.com/leapstack-labs/oraq/pkg/driver"
)

func TestScanStruct(t *testing.T) {
	fake, conn := newConn(t)
	fake.RegisterQuery("SELECT ID, ENAME, SAL FROM EMP",
		[]dpi.ColumnTypeInfo{
			numberCol("ID", 10, 0),
			varcharCol("ENAME", 100),
			numberCol("SAL", 10, 2),
		},
		[][]dpi.Data{{int64Cell(7839), textCell("KING"), textCell("5000.5")}})

	row, err := conn.QueryRow(context.Background(), "SELECT ID, ENAME, SAL FROM EMP")
	require.NoError(t, err)

	type emp struct {
		ID       int64
		Name     string `ora:"ENAME"`
		Salary   float64 `ora:"SAL"`
		Ignored  string `ora:"-"`
		NoColumn string
	}
	var e emp
	e.Ignored = "keep"
	require.NoError(t, driver.ScanStruct(row, &e))
	assert.Equal(t, int64(7839), e.ID)
	assert.Equal(t, "KING", e.Name)
	assert.Equal(t, 5000.5, e.Salary)
	assert.Equal(t, "keep", e.Ignored)
	assert.Empty(t, e.NoColumn)
}

func TestScanStructExplicitTagMustMatch(t *testing.T) {
	fake, conn := newConn(t)
	fake.RegisterQuery("SELECT ID FROM EMP2",
		[]dpi.ColumnTypeInfo{numberCol("ID", 10, 0)},
		[][]dpi.Data{{int64Cell(1)}})

	row, err := conn.QueryRow(context.Background(), "SELECT ID FROM EMP2")
	require.NoError(t, err)

	var dest struct {
		ID    int64
		Wrong string `ora:"NO_SUCH_COLUMN"`
	}
	err = driver.ScanStruct(row, &dest)
	assert.True(t, driver.IsKind(err, driver.ErrKindInvalidColumnName))
}

func TestScanStructRequiresStructPointer(t *testing.T) {
	fake, conn := newConn(t)
	fake.RegisterQuery("SELECT ID FROM EMP3",
		[]dpi.ColumnTypeInfo{numberCol("ID", 10, 0)},
		[][]dpi.Data{{int64Cell(1)}})

	row, err := conn.QueryRow(context.Background(), "SELECT ID FROM EMP3")
	require.NoError(t, err)

	var n int64
	err = driver.ScanStruct(row, &n)
	assert.True(t, driver.IsKind(err, driver.ErrKindDataTypeNotSupported))
	err = driver.ScanStruct(row, nil)
	assert.True(t, driver.IsKind(err, driver.ErrKindDataTypeNotSupported))
}
