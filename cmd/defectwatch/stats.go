package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkoval/defectwatch/internal/analytics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Component frequency and severity totals for a vehicle's complaints",
	RunE:  runStats,
}

func init() {
	addVehicleFlags(statsCmd)
	statsCmd.Flags().BoolVar(&flagEnrich, "enrich", false, "Enrich records first for structured component labels")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	records, stats, err := fetchComplaints(cmd.Context(), a, flagEnrich)
	if err != nil {
		return err
	}
	if stats != nil {
		fmt.Printf("enriched %d of %d (%d failed)\n\n", stats.Enriched, stats.Requested, stats.Failed)
	}

	fmt.Println("Component frequency:")
	for _, cc := range analytics.ComponentFrequency(records) {
		fmt.Printf("  %-40s %5d  %5.1f%%\n", cc.Component, cc.Count, cc.Share*100)
	}

	sev := analytics.Severity(records)
	fmt.Println("\nSeverity:")
	fmt.Printf("  crashes:  %d\n", sev.Crash)
	fmt.Printf("  fires:    %d\n", sev.Fire)
	fmt.Printf("  injuries: %d\n", sev.Injuries)
	fmt.Printf("  deaths:   %d\n", sev.Deaths)
	return nil
}
