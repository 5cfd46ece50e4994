package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkoval/defectwatch/internal/search"
)

var flagTopK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank a vehicle's complaint narratives against a free-text query",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	addVehicleFlags(searchCmd)
	searchCmd.Flags().BoolVar(&flagEnrich, "enrich", false, "Search the longer enriched narratives where available")
	searchCmd.Flags().IntVar(&flagTopK, "top", 10, "Number of results to show")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	texts := make([]string, len(records))
	for i := range records {
		texts[i] = records[i].NarrativeText()
	}
	idx := search.Build(texts)
	hits := idx.Query(args[0], flagTopK)

	if len(hits) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, h := range hits {
		rec := records[h.DocID]
		fmt.Printf("%.3f  ODI %d  %s\n", h.Score, rec.ODINumber, rec.Components)
		fmt.Printf("       %s\n\n", truncate(rec.NarrativeText(), 240))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
