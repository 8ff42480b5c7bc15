// Package main is the entry point for the fleetdb CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/fleetdb/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
