// Package cli provides the command-line interface for oraq.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/oraq/internal/cli/commands"
	"github.com/leapstack-labs/oraq/internal/config"
	"github.com/leapstack-labs/oraq/pkg/dpi"
)

var (
	cfgFile string
	cfg     *config.Config
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates and returns the root command. api is the native
// call layer to run statements through; commands that need a session
// fail with a clear error when it is nil.
func NewRootCmd(api dpi.API) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "oraq",
		Short: "oraq - Oracle SQL client",
		Long: `oraq is a typed Oracle driver core with a thin SQL client on top.

It prepares and executes statements through the native call layer,
fetching rows in bulk with exact NUMBER handling, and renders results
as tables, JSON, CSV, or Markdown.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			// Store config and logger in context
			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			ctx = config.ContextWithLogger(ctx, logger)
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Oracle SQL client and driver core
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./oraq.yaml)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "Database user")
	rootCmd.PersistentFlags().String("password", "", "Database password (prefer ORAQ_PASSWORD or ${VAR} in config)")
	rootCmd.PersistentFlags().StringP("connect-string", "d", "", "Connect descriptor (host[:port]/service)")
	rootCmd.PersistentFlags().Uint32("fetch-array-size", 0, "Rows fetched per round trip")
	rootCmd.PersistentFlags().Uint32("call-timeout-ms", 0, "Per-call timeout in milliseconds (0 = none)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewQueryCommand(api))
	rootCmd.AddCommand(commands.NewPingCommand(api))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command against the given native layer.
func Execute(api dpi.API) error {
	rootCmd := NewRootCmd(api)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Return default config if none in context
	c := &config.Config{}
	c.ApplyDefaults()
	return c
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for oraq.

To load completions:

Bash:
  $ source <(oraq completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ oraq completion bash > /etc/bash_completion.d/oraq
  # macOS:
  $ oraq completion bash > $(brew --prefix)/etc/bash_completion.d/oraq

Zsh:
  $ oraq completion zsh > "${fpath[1]}/_oraq"

Fish:
  $ oraq completion fish | source

PowerShell:
  PS> oraq completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
