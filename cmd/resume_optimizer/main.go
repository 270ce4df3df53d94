// Package main provides the resume_optimizer CLI: iterative resume
// optimization against a job posting, record listing and the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "resume_optimizer",
	Short:         "Iteratively tailor a resume to a job posting",
	Long:          "resume_optimizer rewrites a resume for a job posting, renders it to PDF and repeats until every evaluator passes or the iteration limit is reached.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default $HR_BREAKER_CONFIG)")
	rootCmd.PersistentFlags().String("output-dir", "", "Directory for generated PDFs and the record index")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
