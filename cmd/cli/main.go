// Package main is the entry point for the instance-allocator CLI.
package main

import (
	"os"

	"instance-allocator/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
