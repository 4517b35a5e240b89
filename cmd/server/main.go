// Package main implements the careplan-api command: the HTTP server that
// admits care plan requests and generates them in the background, plus the
// migrate, seed and hash-secret maintenance commands.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
