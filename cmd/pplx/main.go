package main

import (
	"github.com/Krasnovvvvv/perplexity-go/internal/cmd"
)

// Version information set via ldflags during build
// Example: go build -ldflags="-X main.version=1.0.0 -X main.commit=abc123 -X main.buildDate=2026-08-23"
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// Set version info for commands to access
	cmd.SetVersionInfo(version, commit, buildDate)

	// Execute root command; ExitOnError maps error kinds to exit codes.
	cmd.ExitOnError(cmd.Execute())
}
