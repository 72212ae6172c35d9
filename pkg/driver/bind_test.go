package driver_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/oraq/pkg/driver"
	"github.com/leapstack-labs/oraq/pkg/oratype"
)

func TestBindPositionalEcho(t *testing.T) {
	fake, conn := newConn(t)
	echoQuery(fake, "SELECT :1, :2 FROM DUAL", varcharCol("A", 100), numberCol("B", 10, 0))

	s, err := conn.Prepare(context.Background(), "SELECT :1, :2 FROM DUAL")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	require.NoError(t, s.Bind(1, "hello"))
	require.NoError(t, s.Bind(2, int64(42)))
	require.NoError(t, s.Execute(context.Background()))

	ok, err := s.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	row, err := s.Row()
	require.NoError(t, err)

	var a string
	var b int64
	require.NoError(t, row.Scan(&a, &b))
	assert.Equal(t, "hello", a)
	assert.Equal(t, int64(42), b)
}

func TestBindNamedEcho(t *testing.T) {
	fake, conn := newConn(t)
	echoQuery(fake, "SELECT :name FROM DUAL", varcharCol("V", 100))

	s, err := conn.Prepare(context.Background(), "SELECT :name FROM DUAL")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	// Name matching is case-insensitive and tolerates a leading colon.
	require.NoError(t, s.BindNamed(":Name", "x"))
	require.NoError(t, s.Execute(context.Background()))

	row, err := fetchOne(t, s)
	require.NoError(t, err)
	var v string
	require.NoError(t, row.ScanIndex(0, &v))
	assert.Equal(t, "x", v)
}

func TestBindIndexOutOfRange(t *testing.T) {
	_, conn := newConn(t)
	s, err := conn.Prepare(context.Background(), "SELECT :1 FROM DUAL")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	assert.True(t, driver.IsKind(s.Bind(0, 1), driver.ErrKindInvalidBindIndex))
	assert.True(t, driver.IsKind(s.Bind(2, 1), driver.ErrKindInvalidBindIndex))
}

func TestBindUnknownName(t *testing.T) {
	_, conn := newConn(t)
	s, err := conn.Prepare(context.Background(), "SELECT :id FROM DUAL")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	assert.True(t, driver.IsKind(s.BindNamed("nope", 1), driver.ErrKindInvalidBindName))
}

func TestBindModeConflict(t *testing.T) {
	fake, conn := newConn(t)
	echoQuery(fake, "SELECT :id FROM DUAL", numberCol("ID", 10, 0))

	s, err := conn.Prepare(context.Background(), "SELECT :id FROM DUAL")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	require.NoError(t, s.Bind(1, int64(7)))
	err = s.BindNamed("id", int64(8))
	assert.True(t, driver.IsKind(err, driver.ErrKindBindModeConflict))

	// The conflict does not poison the statement: the positional bind
	// still executes.
	require.NoError(t, s.Execute(context.Background()))
	row, err := fetchOne(t, s)
	require.NoError(t, err)
	var id int64
	require.NoError(t, row.ScanIndex(0, &id))
	assert.Equal(t, int64(7), id)

	// After execute the mode resets; named binding is legal again.
	require.NoError(t, s.BindNamed("id", int64(9)))
	require.NoError(t, s.Execute(context.Background()))
	row, err = fetchOne(t, s)
	require.NoError(t, err)
	require.NoError(t, row.ScanIndex(0, &id))
	assert.Equal(t, int64(9), id)
}

func TestBindBufferReuseAndGrowth(t *testing.T) {
	fake, conn := newConn(t)
	echoQuery(fake, "SELECT :1 FROM DUAL", varcharCol("V", 4000))

	s, err := conn.Prepare(context.Background(), "SELECT :1 FROM DUAL")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	before := fake.NewVarCalls
	require.NoError(t, s.Bind(1, "short"))
	assert.Equal(t, before+1, fake.NewVarCalls)

	// Same shape, same or smaller size: the buffer is reused.
	require.NoError(t, s.Bind(1, "tiny"))
	assert.Equal(t, before+1, fake.NewVarCalls)

	// A longer value forces exactly one reallocation.
	long := strings.Repeat("x", 100)
	require.NoError(t, s.Bind(1, long))
	assert.Equal(t, before+2, fake.NewVarCalls)

	// Capacity is monotonic: the original value fits the grown buffer.
	require.NoError(t, s.Bind(1, "short"))
	assert.Equal(t, before+2, fake.NewVarCalls)

	require.NoError(t, s.Execute(context.Background()))
	row, err := fetchOne(t, s)
	require.NoError(t, err)
	var v string
	require.NoError(t, row.ScanIndex(0, &v))
	assert.Equal(t, "short", v)
}

func TestBindTypeChangeReallocates(t *testing.T) {
	fake, conn := newConn(t)

	s, err := conn.Prepare(context.Background(), "SELECT :1 FROM DUAL")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	before := fake.NewVarCalls
	require.NoError(t, s.Bind(1, int64(1)))
	require.NoError(t, s.Bind(1, "now a string"))
	require.NoError(t, s.Bind(1, "str"))
	assert.Equal(t, before+2, fake.NewVarCalls)
}

func TestBindNullRoundTrip(t *testing.T) {
	fake, conn := newConn(t)
	echoQuery(fake, "SELECT :1 FROM DUAL", varcharCol("V", 100))

	s, err := conn.Prepare(context.Background(), "SELECT :1 FROM DUAL")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	require.NoError(t, s.BindNull(1, oratype.Varchar2(10)))
	require.NoError(t, s.Execute(context.Background()))

	row, err := fetchOne(t, s)
	require.NoError(t, err)
	v, err := row.GetIndex(0)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestBindValueReadsBack(t *testing.T) {
	_, conn := newConn(t)
	s, err := conn.Prepare(context.Background(), "BEGIN proc(:1); END;")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	// Reading an untouched slot is an error, not a zero value.
	_, err = s.BindValue(1)
	assert.True(t, driver.IsKind(err, driver.ErrKindUninitializedBind))

	require.NoError(t, s.Bind(1, int64(99)))
	v, err := s.BindValue(1)
	require.NoError(t, err)
	n, err := v.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(99), n)
}

// fetchOne advances one row and detaches it.
func fetchOne(t *testing.T, s *driver.Statement) (*driver.Row, error) {
	t.Helper()
	ok, err := s.Next(context.Background())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, driver.ErrNoMoreData
	}
	return s.Row()
}
