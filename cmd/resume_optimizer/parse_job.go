package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/fetch"
	"github.com/jonathan/resume-optimizer/internal/ingestion"
	"github.com/jonathan/resume-optimizer/internal/parsing"
	"github.com/jonathan/resume-optimizer/internal/pipeline"
)

var parseJobCmd = &cobra.Command{
	Use:   "parse-job JOB_INPUT",
	Short: "Parse a job posting and print its structured fields",
	Long:  "Parse a job posting (file path, URL or text) with the LLM and print the title, company, requirements and keywords used by the optimizer.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParseJob,
}

func init() {
	parseJobCmd.Flags().Bool("json", false, "Print the parsed posting as JSON")
	parseJobCmd.Flags().Bool("browser", false, "Fall back to a headless browser for script-rendered postings")
	rootCmd.AddCommand(parseJobCmd)
}

func runParseJob(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()

	a.connectDB(ctx)
	in, err := ingestion.ResolveJobText(ctx, args[0], a.fetcher())
	var blocked *fetch.BlockedError
	if errors.As(err, &blocked) {
		in, err = manualJobInput(cmd, blocked)
	}
	if err != nil {
		return err
	}

	client, err := pipeline.NewClient(ctx, a.cfg, a.log, a.metrics)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	job, err := parsing.ParseJobPosting(ctx, client, in.Text, a.log)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(job)
	}
	a.out.PrintJobPosting(job)
	return nil
}
