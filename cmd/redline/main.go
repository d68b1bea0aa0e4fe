// Package main is the entry point for the redline CLI.
package main

import (
	"os"

	"github.com/runger/redline/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
