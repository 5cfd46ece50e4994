package main

import (
	"github.com/spf13/cobra"

	"github.com/mkoval/defectwatch/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only HTTP API",
	Long:  "Start an HTTP server exposing recalls, complaints, statistics, narrative search, and VIN decoding as JSON endpoints.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	port := a.cfg.Port
	if servePort != 0 {
		port = servePort
	}

	srv := server.New(server.Config{
		Port:        port,
		MaxRecords:  a.cfg.MaxRecords,
		Concurrency: a.cfg.Concurrency,
	}, a.client, a.pipeline, a.log)

	return srv.Start()
}
