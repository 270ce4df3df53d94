package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/config"
	"github.com/jonathan/resume-optimizer/internal/db"
	"github.com/jonathan/resume-optimizer/internal/fetch"
	"github.com/jonathan/resume-optimizer/internal/logger"
	"github.com/jonathan/resume-optimizer/internal/metrics"
	"github.com/jonathan/resume-optimizer/internal/observability"
	"github.com/jonathan/resume-optimizer/internal/pipeline"
	"github.com/jonathan/resume-optimizer/internal/storage"
)

// app carries what every command needs once flags and config are resolved.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	out     *observability.Printer
	metrics *metrics.Manager
	files   *storage.FileStore
	db      *db.DB
}

// newApp loads the config, applies changed flags on top and builds the logger.
func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogJSON, cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if _, err := maxprocs.Set(maxprocs.Logger(log.Sugar().Debugf)); err != nil {
		log.Debug("failed to set GOMAXPROCS", zap.Error(err))
	}

	files, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		log:     log,
		out:     observability.NewPrinter(cmd.OutOrStdout()),
		metrics: metrics.NewManager(),
		files:   files,
	}, nil
}

// applyFlags copies explicitly set flags over the loaded config. Flags a
// command does not define are never reported as changed.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	set := func(name string, apply func() error) {
		if err == nil && flags.Changed(name) {
			err = apply()
		}
	}

	set("output-dir", func() (e error) { cfg.OutputDir, e = flags.GetString("output-dir"); return })
	set("verbose", func() (e error) { cfg.Verbose, e = flags.GetBool("verbose"); return })
	set("log-json", func() (e error) { cfg.LogJSON, e = flags.GetBool("log-json"); return })
	set("max-iterations", func() (e error) { cfg.MaxIterations, e = flags.GetInt("max-iterations"); return })
	set("debug", func() (e error) { cfg.Debug, e = flags.GetBool("debug"); return })
	set("seq", func() (e error) { cfg.Sequential, e = flags.GetBool("seq"); return })
	set("no-shame", func() (e error) { cfg.NoShame, e = flags.GetBool("no-shame"); return })
	set("browser", func() (e error) { cfg.UseBrowser, e = flags.GetBool("browser"); return })
	set("port", func() (e error) { cfg.Port, e = flags.GetInt("port"); return })
	if err != nil {
		return fmt.Errorf("invalid flag: %w", err)
	}
	return nil
}

// connectDB opens the database when one is configured. A failed connection is
// logged and the command continues without persistence.
func (a *app) connectDB(ctx context.Context) {
	if a.cfg.DatabaseURL == "" {
		return
	}
	database, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		a.log.Warn("database unavailable, continuing without it", zap.Error(err))
		return
	}
	if err := database.EnsureSchema(ctx); err != nil {
		a.log.Warn("failed to apply schema, continuing without database", zap.Error(err))
		database.Close()
		return
	}
	if n, err := database.DeleteExpiredPages(ctx, fetch.DefaultCacheTTL); err != nil {
		a.log.Warn("failed to prune cached job pages", zap.Error(err))
	} else if n > 0 {
		a.log.Debug("pruned cached job pages", zap.Int64("count", n))
	}
	a.db = database
}

// runStore returns the database as a pipeline.RunStore, or nil.
func (a *app) runStore() pipeline.RunStore {
	if a.db == nil {
		return nil
	}
	return a.db
}

// fetcher resolves job URLs, caching pages in the database when connected.
func (a *app) fetcher() *fetch.CachedFetcher {
	var cache fetch.PageCache
	if a.db != nil {
		cache = a.db
	}
	opts := fetch.DefaultOptions()
	opts.UseBrowser = a.cfg.UseBrowser
	opts.Logger = a.log.Named("fetch")
	return fetch.NewCachedFetcher(cache, opts, 0)
}

// writeMetrics dumps the metrics registry when metrics_file is set.
func (a *app) writeMetrics() {
	if a.cfg.MetricsFile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		a.log.Warn("failed to write metrics", zap.Error(err))
	}
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	_ = a.log.Sync()
}
