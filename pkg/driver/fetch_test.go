package driver_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/oraq/internal/dpitest"
	"github.com/leapstack-labs/oraq/pkg/dpi"
	"github.com/leapstack-labs/oraq/pkg/driver"
)

// registerSequence scripts a single-column result set of n sequential
// integers.
func registerSequence(fake *dpitest.Fake, sql string, n int) {
	rows := make([][]dpi.Data, n)
	for i := range rows {
		rows[i] = []dpi.Data{int64Cell(int64(i))}
	}
	fake.RegisterQuery(sql, []dpi.ColumnTypeInfo{numberCol("N", 10, 0)}, rows)
}

func TestBulkFetchBatching(t *testing.T) {
	fake, conn := newConn(t)
	registerSequence(fake, "SELECT N FROM SEQ", 250)

	s, err := conn.Prepare(context.Background(), "SELECT N FROM SEQ")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()
	require.NoError(t, s.Execute(context.Background()))

	var got []int64
	for {
		ok, err := s.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		row, err := s.Row()
		require.NoError(t, err)
		var n int64
		require.NoError(t, row.ScanIndex(0, &n))
		got = append(got, n)
	}

	require.Len(t, got, 250)
	for i, n := range got {
		require.Equal(t, int64(i), n)
	}

	// 250 rows at the default batch size of 100 take three round trips.
	assert.Equal(t, 3, fake.FetchRowsCalls)
	assert.Equal(t, 3, s.FetchCount())
}

func TestRowStaysValidAcrossRefill(t *testing.T) {
	fake, conn := newConn(t)
	registerSequence(fake, "SELECT N FROM SEQ", 250)

	s, err := conn.Prepare(context.Background(), "SELECT N FROM SEQ")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()
	require.NoError(t, s.Execute(context.Background()))

	// Detach the last row of the first batch and the first row of the
	// second, then drain the rest.
	var pinned []*driver.Row
	for i := 0; i < 250; i++ {
		ok, err := s.Next(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
		if i == 99 || i == 100 {
			row, err := s.Row()
			require.NoError(t, err)
			pinned = append(pinned, row)
		}
	}

	require.Len(t, pinned, 2)
	var n int64
	require.NoError(t, pinned[0].ScanIndex(0, &n))
	assert.Equal(t, int64(99), n)
	require.NoError(t, pinned[1].ScanIndex(0, &n))
	assert.Equal(t, int64(100), n)
}

func TestFetchArraySizeOverride(t *testing.T) {
	fake, conn := newConn(t)
	registerSequence(fake, "SELECT N FROM SEQ", 10)

	s, err := conn.Prepare(context.Background(), "SELECT N FROM SEQ",
		driver.WithFetchArraySize(3))
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()
	require.NoError(t, s.Execute(context.Background()))

	count := 0
	for {
		ok, err := s.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 10, count)
	// 10 rows in batches of 3: the last batch is exactly consumed on the
	// fourth round trip.
	assert.Equal(t, 4, fake.FetchRowsCalls)
}

func TestReExecuteReusesFetchBuffer(t *testing.T) {
	fake, conn := newConn(t)
	registerSequence(fake, "SELECT N FROM SEQ", 5)

	s, err := conn.Prepare(context.Background(), "SELECT N FROM SEQ")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	require.NoError(t, s.Execute(context.Background()))
	_, err = s.Next(context.Background())
	require.NoError(t, err)
	allocsAfterFirst := fake.NewVarCalls

	// Same shape on re-execute: no new buffers.
	require.NoError(t, s.Execute(context.Background()))
	count := 0
	for {
		ok, err := s.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 5, count)
	assert.Equal(t, allocsAfterFirst, fake.NewVarCalls)
}

func TestRowAfterExhaustionFails(t *testing.T) {
	fake, conn := newConn(t)
	registerSequence(fake, "SELECT N FROM SEQ", 3)

	s, err := conn.Prepare(context.Background(), "SELECT N FROM SEQ")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()
	require.NoError(t, s.Execute(context.Background()))

	for i := 0; i < 3; i++ {
		ok, err := s.Next(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := s.Next(context.Background())
	require.NoError(t, err)
	require.False(t, ok)

	// Past the end the buffer still holds the final batch; Row must not
	// serve its last row again.
	_, err = s.Row()
	assert.ErrorIs(t, err, driver.ErrNoMoreData)

	// A re-execute clears the exhaustion and fetches normally.
	require.NoError(t, s.Execute(context.Background()))
	ok, err = s.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	row, err := s.Row()
	require.NoError(t, err)
	var n int64
	require.NoError(t, row.ScanIndex(0, &n))
	assert.Equal(t, int64(0), n)
}

func TestRowWithoutFetchFails(t *testing.T) {
	fake, conn := newConn(t)
	registerSequence(fake, "SELECT N FROM SEQ", 1)

	s, err := conn.Prepare(context.Background(), "SELECT N FROM SEQ")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()
	require.NoError(t, s.Execute(context.Background()))

	_, err = s.Row()
	assert.ErrorIs(t, err, driver.ErrNoMoreData)
}

func TestFilteredQueryScenario(t *testing.T) {
	fake, conn := newConn(t)
	people := map[int64][2]any{
		1: {int64(100), "alpha"},
		2: {int64(200), "beta"},
	}
	fake.RegisterQueryFunc("SELECT A, B FROM T WHERE ID = :1",
		func(binds []dpi.Data) ([]dpi.ColumnTypeInfo, [][]dpi.Data) {
			cols := []dpi.ColumnTypeInfo{numberCol("A", 10, 0), varcharCol("B", 100)}
			rec, ok := people[binds[0].Int64]
			if !ok {
				return cols, nil
			}
			return cols, [][]dpi.Data{{int64Cell(rec[0].(int64)), textCell(rec[1].(string))}}
		})

	s, err := conn.Prepare(context.Background(), "SELECT A, B FROM T WHERE ID = :1")
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	for id, want := range people {
		require.NoError(t, s.Bind(1, id))
		require.NoError(t, s.Execute(context.Background()))

		row, err := fetchOne(t, s)
		require.NoError(t, err)

		// Column lookup tolerates lower case for unquoted identifiers.
		var a int64
		var b string
		require.NoError(t, row.ScanByName("a", &a))
		require.NoError(t, row.ScanByName("b", &b))
		assert.Equal(t, want[0], a, fmt.Sprintf("id=%d", id))
		assert.Equal(t, want[1], b, fmt.Sprintf("id=%d", id))

		ok, err := s.Next(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	}
}
