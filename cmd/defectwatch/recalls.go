package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkoval/defectwatch/internal/types"
)

var recallsCmd = &cobra.Command{
	Use:   "recalls",
	Short: "List recall campaigns for a vehicle",
	RunE:  runRecalls,
}

func init() {
	addVehicleFlags(recallsCmd)
	rootCmd.AddCommand(recallsCmd)
}

func runRecalls(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	v := types.Vehicle{Make: vehicleMake, Model: vehicleModel, Year: vehicleYear}

	records, source, err := a.client.RecallsByVehicle(cmd.Context(), v)
	if err != nil {
		return err
	}
	fmt.Printf("%d recall(s) for %s (source: %s)\n\n", len(records), v, source)
	for _, rec := range records {
		fmt.Printf("%s  %s\n", rec.CampaignNumber, rec.Component)
		if rec.Summary != "" {
			fmt.Printf("  %s\n", rec.Summary)
		}
		if rec.Remedy != "" {
			fmt.Printf("  Remedy: %s\n", rec.Remedy)
		}
		fmt.Println()
	}
	return nil
}
