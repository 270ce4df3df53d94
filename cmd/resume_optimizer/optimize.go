package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/fetch"
	"github.com/jonathan/resume-optimizer/internal/ingestion"
	"github.com/jonathan/resume-optimizer/internal/pipeline"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize RESUME_PATH JOB_INPUT",
	Short: "Optimize a resume for a job posting",
	Long: `Optimize rewrites the resume at RESUME_PATH for JOB_INPUT, which may be a file
path, a job posting URL or the posting text itself. The loop renders every
attempt to PDF and stops once all evaluators pass or the iteration limit is hit.`,
	Args: cobra.ExactArgs(2),
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().StringP("output", "o", "", "Output PDF path (default <output-dir>/<first>_<last>_<company>_<title>.pdf)")
	optimizeCmd.Flags().IntP("max-iterations", "n", 5, "Maximum rewrite iterations")
	optimizeCmd.Flags().BoolP("debug", "d", false, "Save every iteration under <output-dir>/debug")
	optimizeCmd.Flags().BoolP("seq", "s", false, "Run evaluators sequentially, stopping at the first failure")
	optimizeCmd.Flags().Bool("no-shame", false, "Use lenient rewriting and hallucination rules")
	optimizeCmd.Flags().Bool("browser", false, "Fall back to a headless browser for script-rendered postings")

	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()
	cfg := a.cfg

	resumeText, err := ingestion.LoadResume(args[0])
	if err != nil {
		return err
	}

	a.connectDB(ctx)

	job, err := ingestion.ResolveJobText(ctx, args[1], a.fetcher())
	var blocked *fetch.BlockedError
	if errors.As(err, &blocked) {
		job, err = manualJobInput(cmd, blocked)
	}
	if err != nil {
		return err
	}
	a.log.Debug("job input resolved", zap.String("kind", job.Kind), zap.String("location", job.Location))

	client, err := pipeline.NewClient(ctx, cfg, a.log, a.metrics)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	components, err := pipeline.NewComponents(cfg, client, cfg.NoShame, a.log)
	if err != nil {
		return err
	}

	mode := evaluation.ModeParallel
	if cfg.Sequential {
		mode = evaluation.ModeSequential
	}
	opts := pipeline.Options{
		ResumeText:         resumeText,
		JobText:            job.Text,
		JobURL:             job.URL(),
		MaxIterations:      cfg.MaxIterations,
		Mode:               mode,
		NoShame:            cfg.NoShame,
		NameExtractorChars: cfg.NameExtractorChars,
		Client:             client,
		Components:         components,
		Metrics:            a.metrics,
		Store:              a.runStore(),
		Logger:             a.log,
	}
	if cfg.Debug {
		opts.Debug = a.files
	}

	out, err := pipeline.Run(ctx, opts, func(ev pipeline.ProgressEvent) {
		switch ev.Step {
		case pipeline.StepName, pipeline.StepDebug:
			a.out.Printf("%s", ev.Message)
		case pipeline.StepJob:
			a.out.Printf("%s", ev.Message)
			a.out.Printf("%s", modeLine(mode, cfg.NoShame))
		case pipeline.StepIteration:
			if v, ok := ev.Content.(evaluation.Verdict); ok {
				a.out.PrintIteration(ev.Iteration, v)
			}
		}
	})
	a.writeMetrics()
	if err != nil {
		return err
	}

	if !out.Passed() {
		a.out.Printf("Warning: Not all filters passed")
		if cfg.Verbose {
			a.out.PrintVerdict(out.Result.Verdict)
		}
	}

	pdf := out.PDF()
	if len(pdf) == 0 {
		return pipeline.ErrNoPDF
	}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = a.files.GeneratePath(out.Source.FirstName, out.Source.LastName, out.Job.Company, out.Job.Title)
	}
	if err := a.files.WriteFile(path, pdf); err != nil {
		return err
	}

	rec := out.Record(path)
	if err := a.files.Save(rec); err != nil {
		return fmt.Errorf("PDF written but not recorded: %w", err)
	}
	if a.db != nil {
		var runID *uuid.UUID
		if out.RunID != uuid.Nil {
			runID = &out.RunID
		}
		if _, err := a.db.SaveGeneratedResume(ctx, runID, rec); err != nil {
			a.log.Warn("failed to record resume in database", zap.Error(err))
		}
	}

	a.out.Printf("PDF saved: %s", path)
	if out.DebugDir != "" {
		a.out.Printf("Debug output: %s", out.DebugDir)
	}
	return nil
}

// modeLine describes how the loop evaluates candidates.
func modeLine(mode evaluation.Mode, noShame bool) string {
	label := string(mode)
	if noShame {
		label += ", no-shame"
	}
	return fmt.Sprintf("Optimizing (mode: %s)...", label)
}

// manualJobInput offers to paste the posting when the site blocked the fetch.
func manualJobInput(cmd *cobra.Command, blocked *fetch.BlockedError) (*ingestion.JobInput, error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Could not fetch the job posting: %v\n", blocked) //nolint:errcheck
	if !confirm("Paste the job description manually") {
		return nil, blocked
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Paste the job description, then press Enter twice on empty lines:") //nolint:errcheck
	text, err := readMultiline(os.Stdin)
	if err != nil {
		return nil, err
	}
	return ingestion.ManualJobInput(text, blocked.URL)
}
