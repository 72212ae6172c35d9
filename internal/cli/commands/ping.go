package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/oraq/pkg/dpi"
)

// NewPingCommand creates the ping command.
func NewPingCommand(api dpi.API) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to the configured database",
		Long:  `Open a session, issue a liveness round trip, and report the server version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd, api)
			if err != nil {
				return err
			}
			defer cleanup()

			start := time.Now()
			if err := cmdCtx.Conn.Ping(cmd.Context()); err != nil {
				return err
			}
			elapsed := time.Since(start).Round(time.Millisecond)

			v, err := cmdCtx.Conn.ServerVersion()
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "OK: server version %s (%s)\n", v, elapsed)
			return nil
		},
	}
}
