// Package main is the entry point for the atm CLI tool.
package main

import (
	"os"

	"github.com/atmark-dev/atmark/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
