package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "traffic-forecast-api",
	Short: "Traffic statistics and volume forecast service",
	Long: `Serves per-hour route statistics and a random forest traffic volume
forecast from static historical datasets.

Without a subcommand the HTTP server is started.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, evaluateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
