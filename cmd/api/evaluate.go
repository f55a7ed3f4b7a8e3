package main

import (
	"encoding/json"
	"fmt"
	"os"

	"traffic-forecast-api/app"
	"traffic-forecast-api/config"

	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Train the forecast model and print its held-out metrics as JSON",
	Long: `Loads the configured datasets, trains the model exactly as the server
would and writes the held-out metrics to stdout. Useful to compare model
settings (MODEL_TREES, MODEL_MAX_DEPTH, ...) without starting the server.`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	state, err := app.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(state.Forecaster.Model().Metrics())
}
