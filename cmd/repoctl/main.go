// Package main is the entry point for the repoctl CLI application.
package main

import (
	"os"

	"github.com/repoctl/repoctl/cmd/repoctl/cmd"
)

// version is set during build time via ldflags.
var version = "dev"

func main() {
	os.Exit(cmd.Execute(version))
}
