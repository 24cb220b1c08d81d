package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var apiURL string

var rootCmd = &cobra.Command{
	Use:           "crmctl",
	Short:         "Operate the CRM API and its database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPIURL(), "API base URL (env CRM_API_URL)")
	rootCmd.AddCommand(migrateCmd, seedCmd, leadsCmd, dealsCmd, stagesCmd, dashboardCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func defaultAPIURL() string {
	if url := os.Getenv("CRM_API_URL"); url != "" {
		return url
	}
	return "http://localhost:8787/api"
}
