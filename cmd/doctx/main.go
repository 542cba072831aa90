// Package main provides the entry point for the doctx CLI.
package main

import (
	"os"

	"github.com/neerajchowdary889/doctx/cmd/doctx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
