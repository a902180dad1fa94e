package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fleetdocs/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "fleetdocs",
	Short: "fleetdocs - vehicle registration document recognition and matching",
	Long: `fleetdocs recognizes photographed vehicle registration documents,
extracts structured vehicle attributes via OCR, matches each document to a
registered fleet vehicle by plate number, and merges newly recognized fields
into the matched record.

Recognition runs against Google Cloud Vision (with an optional Document AI
processor for structured field guesses) and falls back to a local Tesseract
engine when the cloud provider is unavailable.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
