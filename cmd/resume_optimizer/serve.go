package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/config"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/pipeline"
	"github.com/jonathan/resume-optimizer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing POST /optimize/stream (SSE progress),
GET /records, GET /metrics and GET /health.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()

	client, err := pipeline.NewClient(ctx, a.cfg, a.log, a.metrics)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	a.connectDB(ctx)

	srvCfg := server.Config{
		App:        a.cfg,
		Client:     client,
		Components: componentsFactory(a.cfg, client, a.log),
		Fetcher:    a.fetcher(),
		Metrics:    a.metrics,
		Store:      a.runStore(),
		Records:    server.FileRecords{Store: a.files},
		Logger:     a.log.Named("server"),
	}
	if a.db != nil {
		srvCfg.Records = server.DBRecords{DB: a.db}
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

// componentsFactory builds per-request components sharing one LLM client.
func componentsFactory(cfg *config.Config, client llm.Client, log *zap.Logger) server.ComponentsFactory {
	return func(noShame bool) (*pipeline.Components, error) {
		return pipeline.NewComponents(cfg, client, noShame, log)
	}
}
