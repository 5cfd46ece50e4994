package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var vinCmd = &cobra.Command{
	Use:   "vin <vin>",
	Short: "Decode a 17-character VIN",
	Args:  cobra.ExactArgs(1),
	RunE:  runVIN,
}

func init() {
	rootCmd.AddCommand(vinCmd)
}

func runVIN(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	result, source, err := a.client.DecodeVIN(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("VIN %s (source: %s)\n", result.VIN, source)
	fmt.Printf("  Make:       %s\n", result.Make)
	fmt.Printf("  Model:      %s\n", result.Model)
	fmt.Printf("  Model year: %s\n", result.ModelYear)
	if result.DecodeWarning != "" {
		fmt.Printf("  Warning:    %s\n", result.DecodeWarning)
	}
	return nil
}
