// Package main provides the entry point for the assistd server.
package main

import (
	"fmt"
	"os"

	"github.com/assistd-ai/assistd/cmd/assistd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
