// Package main provides the entry point for the vectorium CLI.
package main

import (
	"os"

	"github.com/vectorium/vectorium/cmd/vectorium/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
