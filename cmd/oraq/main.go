// Package main provides the oraq command-line client.
package main

import (
	"os"

	"github.com/leapstack-labs/oraq/internal/cli"
	"github.com/leapstack-labs/oraq/pkg/dpi"
)

// nativeLayer is provided by the platform-specific build that links the
// Oracle client libraries. A build without one can still run version,
// completion, and help.
var nativeLayer dpi.API

func main() {
	if err := cli.Execute(nativeLayer); err != nil {
		os.Exit(1)
	}
}
