// Package main provides the defectwatch CLI: vehicle-safety recall and
// complaint lookups over the NHTSA APIs with local caching, enrichment,
// aggregate statistics, and narrative search.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "defectwatch",
	Short: "Vehicle safety recall and complaint analysis",
	Long: "defectwatch fetches vehicle recalls and consumer complaints from the NHTSA " +
		"public APIs, caches every payload on disk, enriches complaints with per-record " +
		"detail, and answers aggregate statistics and free-text narrative searches.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
