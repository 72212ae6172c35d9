// Package commands implements the oraq CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/oraq/internal/config"
	"github.com/leapstack-labs/oraq/pkg/dpi"
	"github.com/leapstack-labs/oraq/pkg/driver"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Conn   *driver.Connection
}

// NewCommandContext opens a session through the native layer.
// Returns the context and a cleanup function that must be called
// (typically via defer).
func NewCommandContext(cmd *cobra.Command, api dpi.API) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	if api == nil {
		return nil, nil, fmt.Errorf("no native call layer is linked into this build")
	}
	if err := dpi.Init(); err != nil {
		return nil, nil, err
	}

	conn, err := driver.Connect(cmd.Context(), api, cfg.ConnParams(),
		driver.WithLogger(logger),
		driver.WithDefaultFetchArraySize(cfg.FetchArraySize))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect: %w", err)
	}

	cleanup := func() {
		_ = conn.Close()
	}

	return &CommandContext{
		Cfg:    cfg,
		Logger: logger,
		Conn:   conn,
	}, cleanup, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	cfg := &config.Config{
		User:          os.Getenv("ORAQ_USER"),
		Password:      os.Getenv("ORAQ_PASSWORD"),
		ConnectString: os.Getenv("ORAQ_CONNECT_STRING"),
		Verbose:       os.Getenv("ORAQ_VERBOSE") == "true",
		Format:        os.Getenv("ORAQ_FORMAT"),
	}
	if v := os.Getenv("ORAQ_FETCH_ARRAY_SIZE"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.FetchArraySize = uint32(n)
		}
	}
	cfg.ApplyDefaults()
	return cfg
}
