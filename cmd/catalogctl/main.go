// Package main implements catalogctl, which validates, prints, and publishes
// term catalogs for the term search service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "catalogctl",
	Short:         "Manage term search catalogs",
	Long:          "catalogctl validates catalog files, prints catalogs, and publishes them to the Redis key the term search workers read.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
