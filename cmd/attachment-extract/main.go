package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "attachment-extract",
		Short: "Inspect and route attachments of local .eml files",
		Long: "attachment-extract runs the attachment router against a local message file.\n" +
			"plan prints the writes that would be made; run performs them against a local directory.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Path to config file (routing, destination and verification settings)")
	rootCmd.PersistentFlags().StringVar(&flags.Date, "date", "", "Processing date in the routing.date_format layout, defaults to today")
	rootCmd.PersistentFlags().BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")

	rootCmd.AddCommand(newPlanCmd(), newRunCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
