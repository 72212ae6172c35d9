package driver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/oraq/internal/dpitest"
	"github.com/leapstack-labs/oraq/internal/testutil"
	"github.com/leapstack-labs/oraq/pkg/dpi"
	"github.com/leapstack-labs/oraq/pkg/driver"
)

// newConn wires a fresh in-memory native layer to a connection. The
// connection is closed with the test.
func newConn(t *testing.T) (*dpitest.Fake, *driver.Connection) {
	t.Helper()
	fake := dpitest.New()
	conn, err := driver.Connect(context.Background(), fake,
		dpi.ConnParams{Username: "scott", ConnectString: "db1"},
		driver.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return fake, conn
}

// numberCol describes a NUMBER(precision, scale) result column.
func numberCol(name string, precision int16, scale int8) dpi.ColumnTypeInfo {
	return dpi.ColumnTypeInfo{
		Name:       name,
		OracleType: dpi.TypeNumber,
		Precision:  precision,
		Scale:      scale,
		NullOK:     true,
	}
}

func varcharCol(name string, size uint32) dpi.ColumnTypeInfo {
	return dpi.ColumnTypeInfo{
		Name:          name,
		OracleType:    dpi.TypeVarchar,
		DBSizeInBytes: size,
		SizeInChars:   size,
		NullOK:        true,
	}
}

// echoQuery registers sql to return one row holding exactly the bound
// values, one column per placeholder.
func echoQuery(fake *dpitest.Fake, sql string, cols ...dpi.ColumnTypeInfo) {
	fake.RegisterQueryFunc(sql, func(binds []dpi.Data) ([]dpi.ColumnTypeInfo, [][]dpi.Data) {
		row := make([]dpi.Data, len(cols))
		copy(row, binds)
		return cols, [][]dpi.Data{row}
	})
}

func int64Cell(v int64) dpi.Data {
	var d dpi.Data
	d.SetInt64(v)
	return d
}

func textCell(s string) dpi.Data {
	var d dpi.Data
	d.SetBytes([]byte(s))
	return d
}

func nullCell(native dpi.NativeTypeNum) dpi.Data {
	return dpi.Data{NativeType: native, IsNull: true}
}
