package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkoval/defectwatch/internal/enrich"
	"github.com/mkoval/defectwatch/internal/types"
)

var (
	flagEnrich      bool
	flagMaxRecords  int
	flagConcurrency int
)

var complaintsCmd = &cobra.Command{
	Use:   "complaints",
	Short: "List consumer complaints for a vehicle",
	RunE:  runComplaints,
}

func init() {
	addVehicleFlags(complaintsCmd)
	complaintsCmd.Flags().BoolVar(&flagEnrich, "enrich", false, "Fetch per-record detail (location, full narrative, structured components)")
	complaintsCmd.Flags().IntVar(&flagMaxRecords, "max-records", 0, "Maximum records to enrich (default from config)")
	complaintsCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Maximum concurrent enrichment fetches (default from config)")
	rootCmd.AddCommand(complaintsCmd)
}

// fetchComplaints fetches the complaint set for the vehicle flags, running
// the enrichment pipeline when requested. Shared by the complaints, stats,
// trend, and search commands.
func fetchComplaints(ctx context.Context, a *app, doEnrich bool) ([]types.ComplaintRecord, *enrich.Stats, error) {
	v := types.Vehicle{Make: vehicleMake, Model: vehicleModel, Year: vehicleYear}
	records, _, err := a.client.ComplaintsByVehicle(ctx, v)
	if err != nil {
		return nil, nil, err
	}
	if !doEnrich {
		return records, nil, nil
	}

	opts := enrich.Options{MaxRecords: a.cfg.MaxRecords, Concurrency: a.cfg.Concurrency}
	if flagMaxRecords > 0 {
		opts.MaxRecords = flagMaxRecords
	}
	if flagConcurrency > 0 {
		opts.Concurrency = flagConcurrency
	}
	result, err := a.pipeline.Run(ctx, records, opts)
	if err != nil {
		return nil, nil, err
	}
	return result.Records, &result.Stats, nil
}

func runComplaints(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	records, stats, err := fetchComplaints(cmd.Context(), a, flagEnrich)
	if err != nil {
		return err
	}

	fmt.Printf("%d complaint(s)\n", len(records))
	if stats != nil {
		fmt.Printf("enriched %d of %d (%d failed)\n", stats.Enriched, stats.Requested, stats.Failed)
	}
	fmt.Println()
	for _, rec := range records {
		fmt.Printf("ODI %d  %s", rec.ODINumber, rec.Components)
		if rec.Enrichment != nil && rec.Enrichment.ConsumerLocation != "" {
			fmt.Printf("  (%s)", rec.Enrichment.ConsumerLocation)
		}
		fmt.Println()
		fmt.Printf("  %s\n\n", rec.NarrativeText())
	}
	return nil
}
