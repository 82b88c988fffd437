// Package main provides the entry point for the soractl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/raphaelgruber/soractl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		if !cli.ErrReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
