// Package main provides the devlog command: a batch generator that turns
// version-control history and markdown documentation into static blog posts
// plus a rebuilt index.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	// Tokens like GITHUB_TOKEN may live in a dotfile; a missing .env is
	// not an error.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
