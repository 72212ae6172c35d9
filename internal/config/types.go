// Package config provides configuration for the oraq driver and CLI.
//
// Configuration is layered: built-in defaults, then an oraq.yaml file,
// then ORAQ_-prefixed environment variables, then command-line flags.
package config

import (
	"github.com/leapstack-labs/oraq/pkg/dpi"
)

// Config holds all driver and CLI configuration options.
type Config struct {
	// Connection parameters.
	User          string `koanf:"user"`
	Password      string `koanf:"password"`
	ConnectString string `koanf:"connect_string"`

	// Driver tuning knobs.
	FetchArraySize uint32 `koanf:"fetch_array_size"`
	PrefetchRows   uint32 `koanf:"prefetch_rows"`
	CallTimeoutMS  uint32 `koanf:"call_timeout_ms"`
	StmtCacheSize  uint32 `koanf:"stmt_cache_size"`
	StmtCacheTag   string `koanf:"stmt_cache_tag"`

	// CLI behavior.
	HistoryFile string `koanf:"history_file"`
	Verbose     bool   `koanf:"verbose"`
	Format      string `koanf:"format"`
}

// Default configuration values.
const (
	DefaultFetchArraySize = 100
	DefaultPrefetchRows   = 2
	DefaultStmtCacheSize  = 20
	DefaultFormat         = "table"
	DefaultHistoryFile    = ".oraq_history"
)

// ApplyDefaults fills zero-valued tuning knobs with their defaults.
func (c *Config) ApplyDefaults() {
	if c.FetchArraySize == 0 {
		c.FetchArraySize = DefaultFetchArraySize
	}
	if c.PrefetchRows == 0 {
		c.PrefetchRows = DefaultPrefetchRows
	}
	if c.StmtCacheSize == 0 {
		c.StmtCacheSize = DefaultStmtCacheSize
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.HistoryFile == "" {
		c.HistoryFile = DefaultHistoryFile
	}
}

// ConnParams maps the connection portion of the configuration onto the
// native layer's session parameters.
func (c *Config) ConnParams() dpi.ConnParams {
	return dpi.ConnParams{
		Username:      c.User,
		Password:      c.Password,
		ConnectString: c.ConnectString,
		CallTimeout:   c.CallTimeoutMS,
		StmtCacheSize: c.StmtCacheSize,
		PrefetchRows:  c.PrefetchRows,
	}
}
