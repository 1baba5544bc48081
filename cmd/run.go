package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/azielinski/jobradar/internal/api"
	"github.com/azielinski/jobradar/internal/browser"
	"github.com/azielinski/jobradar/internal/config"
	"github.com/azielinski/jobradar/internal/enrich"
	"github.com/azielinski/jobradar/internal/logging"
	"github.com/azielinski/jobradar/internal/pipeline"
	"github.com/azielinski/jobradar/internal/scrape"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one full extraction and enrichment pass",
		Long: `Extracts postings from every configured source, scores the new ones
against the candidate profile, and persists the enriched records.
Sources run sequentially; pages within a source are fetched
concurrently.`,
		RunE: runPipelineCommand,
	}
}

func runPipelineCommand(cmd *cobra.Command, _ []string) error {
	app, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := app.Config

	sites, err := buildSites(cfg.Sources, app.Logger)
	if err != nil {
		return err
	}
	if len(sites) == 0 {
		return errors.New("no sources configured")
	}

	driver, err := browser.NewChromedp(browser.Config{
		Headless:          cfg.Scrape.Headless,
		UserAgent:         cfg.Scrape.UserAgent,
		NavigationTimeout: cfg.Scrape.NavigationTimeout,
	}, app.Logger)
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if cerr := driver.Close(); cerr != nil {
			app.Logger.Warn("browser close failed", zap.Error(cerr))
		}
	}()

	scorer := enrich.NewDeepSeek(enrich.DeepSeekConfig{
		APIKey:    cfg.Scoring.APIKey,
		BaseURL:   cfg.Scoring.BaseURL,
		Model:     cfg.Scoring.Model,
		MaxTokens: cfg.Scoring.MaxTokens,
	})
	analyzer := enrich.New(scorer, app.Store, enrich.Config{
		Workers:           cfg.Scoring.Workers,
		MinAnalysisLength: cfg.Scoring.MinAnalysisLength,
		Profile:           cfg.Scoring.CandidateProfile,
		Expectations:      cfg.Scoring.ScoringRubric,
	}, logging.ForStage(app.Logger, "enrich"))

	runner := pipeline.New(driver, app.Store, analyzer, scrape.Config{
		MaxConcurrency:  cfg.Scrape.MaxConcurrency,
		SettleDelay:     cfg.Scrape.SettleDelay,
		RetryAttempts:   cfg.Scrape.RetryAttempts,
		ForbiddenTitles: cfg.Scrape.ForbiddenTitles,
	}, sites, logging.ForStage(app.Logger, "scrape"))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Enabled {
		srv := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: api.NewServer(app.Store, logging.ForStage(app.Logger, "api")).Handler(),
		}
		go func() {
			app.Logger.Info("serving metrics and offers", zap.String("addr", cfg.Server.Addr))
			if serr := srv.ListenAndServe(); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
				app.Logger.Error("http server failed", zap.Error(serr))
			}
		}()
		defer srv.Close()
	}

	sum, err := runner.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run pipeline: %w", err)
	}
	app.Logger.Info("pipeline pass finished",
		zap.Int("persisted", sum.Persisted),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed),
	)
	return nil
}

func buildSites(sources []config.Source, logger *zap.Logger) ([]scrape.Site, error) {
	sites := make([]scrape.Site, 0, len(sources))
	for _, src := range sources {
		switch src.Adapter {
		case "justjoinit":
			sites = append(sites, scrape.NewJustJoinIt(src.Name, src.Seeds))
		case "pracujpl":
			sites = append(sites, scrape.NewPracujPl(src.Name, src.Seeds, logger))
		case "hexagon":
			sites = append(sites, scrape.NewHexagon(src.Name, src.Seeds))
		default:
			return nil, fmt.Errorf("unknown source adapter %q", src.Adapter)
		}
	}
	return sites, nil
}
