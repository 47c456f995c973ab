// Package main is the entry point for the xtreamr command.
package main

import (
	"os"

	"github.com/jmylchreest/xtreamr/cmd/xtreamr/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
