// Package main is the entry point for the stockmcp server CLI.
//
// The CLI wires the shared stock store into its two access surfaces:
// a conventional REST API (basic auth) and an MCP server over streamable
// HTTP (bearer token). Startup sequence:
//
// 1. Initialize logging
// 2. Load .env and the YAML configuration
// 3. Open the file-backed stock database
// 4. Start the requested server until interrupted
package main

import (
	"os"

	"stockmcp/cmd/stockmcp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
