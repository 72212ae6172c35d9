package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/oraq/internal/dpitest"
	"github.com/leapstack-labs/oraq/internal/testutil"
	"github.com/leapstack-labs/oraq/pkg/dpi"
	"github.com/leapstack-labs/oraq/pkg/driver"
)

// renderFixture executes a scripted two-column query and renders it in
// the given format.
func renderFixture(t *testing.T, format string) string {
	t.Helper()
	fake := dpitest.New()
	fake.RegisterQuery("SELECT ID, NAME FROM DEPT",
		[]dpi.ColumnTypeInfo{numberCol("ID", 10, 0), varcharCol("NAME", 100)},
		[][]dpi.Data{
			{int64Cell(10), textCell("ACCOUNTING")},
			{int64Cell(20), textCell("RESEARCH")},
		})

	ctx := context.Background()
	conn, err := driver.Connect(ctx, fake, dpi.ConnParams{Username: "scott", ConnectString: "db1"},
		driver.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	s, err := conn.Prepare(ctx, "SELECT ID, NAME FROM DEPT")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Execute(ctx))

	buf := new(bytes.Buffer)
	require.NoError(t, renderRows(ctx, buf, s, format))
	return buf.String()
}

func TestRenderTable(t *testing.T) {
	out := renderFixture(t, "table")
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "ACCOUNTING")
	assert.Contains(t, out, "RESEARCH")
	assert.Contains(t, out, "(2 rows)")
	// StyleLight box drawing
	assert.Contains(t, out, "─")
}

func TestRenderMarkdown(t *testing.T) {
	out := renderFixture(t, "md")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| ID | NAME |", lines[0])
	assert.Equal(t, "| --- | --- |", lines[1])
	assert.Equal(t, "| 10 | ACCOUNTING |", lines[2])
	assert.Equal(t, "| 20 | RESEARCH |", lines[3])
}

func TestRenderCSVEscaping(t *testing.T) {
	fake := dpitest.New()
	fake.RegisterQuery("SELECT NOTE FROM T",
		[]dpi.ColumnTypeInfo{varcharCol("NOTE", 200)},
		[][]dpi.Data{{textCell(`has,comma and "quote"`)}})

	ctx := context.Background()
	conn, err := driver.Connect(ctx, fake, dpi.ConnParams{Username: "scott", ConnectString: "db1"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	s, err := conn.Prepare(ctx, "SELECT NOTE FROM T")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Execute(ctx))

	buf := new(bytes.Buffer)
	require.NoError(t, renderRows(ctx, buf, s, "csv"))
	assert.Equal(t, "NOTE\n\"has,comma and \"\"quote\"\"\"\n", buf.String())
}

func TestRenderEmptyResultSet(t *testing.T) {
	fake := dpitest.New()
	fake.RegisterQuery("SELECT ID FROM EMPTY_T",
		[]dpi.ColumnTypeInfo{numberCol("ID", 10, 0)}, nil)

	ctx := context.Background()
	conn, err := driver.Connect(ctx, fake, dpi.ConnParams{Username: "scott", ConnectString: "db1"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	s, err := conn.Prepare(ctx, "SELECT ID FROM EMPTY_T")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Execute(ctx))

	buf := new(bytes.Buffer)
	require.NoError(t, renderRows(ctx, buf, s, "table"))
	assert.Equal(t, "(0 rows)\n", buf.String())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", formatValue(nil))
	assert.Equal(t, "42", formatValue(int64(42)))
	assert.Equal(t, "abc", formatValue("abc"))
}
