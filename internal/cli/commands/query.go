package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/oraq/pkg/dpi"
	"github.com/leapstack-labs/oraq/pkg/driver"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(api dpi.API) *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Execute SQL against the configured database",
		Long: `Execute a SQL statement against the configured database.

SELECT results are fetched in bulk and rendered in the chosen output
format. DML statements report the affected row count and commit on
success.

When invoked without arguments on a terminal, enters interactive REPL
mode.`,
		Example: `  # Execute SQL directly
  oraq query "SELECT ename, sal FROM emp WHERE deptno = 10"

  # Output as JSON
  oraq query "SELECT * FROM dept" --format json

  # Read SQL from a file
  oraq query --input report.sql

  # Pipe SQL on stdin
  echo "SELECT sysdate FROM dual" | oraq query

  # Interactive mode
  oraq query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts, api)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions, api dpi.API) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, api)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.Format == "" {
		opts.Format = cmdCtx.Cfg.Format
	}

	// Determine SQL source
	var sqlText string

	switch {
	case len(args) > 0:
		sqlText = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlText = string(content)
	case !isTerminal(os.Stdin):
		// Read from stdin (piped input)
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlText = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, cmdCtx, opts)
	}

	return executeAndRender(cmd.Context(), cmd.OutOrStdout(), cmdCtx.Conn, sqlText, opts.Format)
}

// executeAndRender runs one statement and renders its outcome: rows for
// queries, the affected count for everything else. DML commits on
// success.
func executeAndRender(ctx context.Context, w io.Writer, conn *driver.Connection, sqlText, format string) error {
	sqlText = strings.TrimSpace(sqlText)
	sqlText = strings.TrimSuffix(sqlText, ";")
	if sqlText == "" {
		return nil
	}

	s, err := conn.Prepare(ctx, sqlText)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.Execute(ctx); err != nil {
		return err
	}

	if s.IsQuery() {
		return renderRows(ctx, w, s, format)
	}

	if s.IsDML() {
		if err := conn.Commit(ctx); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(w, "(%d rows affected)\n", s.RowsAffected())
	return nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
