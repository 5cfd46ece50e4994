package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkoval/defectwatch/internal/analytics"
)

var flagComponent string

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Monthly complaint volume for a vehicle",
	RunE:  runTrend,
}

func init() {
	addVehicleFlags(trendCmd)
	trendCmd.Flags().StringVar(&flagComponent, "component", "", "Restrict to complaints naming this component")
	rootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	records, _, err := fetchComplaints(cmd.Context(), a, false)
	if err != nil {
		return err
	}

	trend := analytics.MonthlyTrend(records, flagComponent)
	if len(trend) == 0 {
		fmt.Println("no dated complaints")
		return nil
	}
	for _, mc := range trend {
		fmt.Printf("%s  %4d  %s\n", mc.Month.Format("2006-01"), mc.Count, strings.Repeat("#", mc.Count))
	}
	return nil
}
