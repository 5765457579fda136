// Package main is the entry point for the pokedex API.
//
// MAIN PACKAGE IN GO:
// main stays minimal: it builds the command tree and runs it. Each
// subcommand reads its configuration and hands off to internal packages.
//
//	pokedex serve                 run the HTTP API
//	pokedex migrate up|down|version
//	pokedex seed [--file catalog.yaml]
package main

import (
	"os"
)

// Version information set at build time.
var version = "dev"

func main() {
	cmd := NewRootCmd()
	cmd.Version = version

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
