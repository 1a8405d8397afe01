package main

import (
	"fmt"
	"os"

	"grape-bot/internal/cli"
)

var (
	version = "dev" // Overwritten at build time
)

func main() {
	rootCmd := cli.NewRootCommand(version)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
