// Package pipeline sequences extraction across all configured sources
// and feeds the assembled records into enrichment.
package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/azielinski/jobradar/internal/browser"
	"github.com/azielinski/jobradar/internal/enrich"
	"github.com/azielinski/jobradar/internal/model"
	"github.com/azielinski/jobradar/internal/scrape"
	"github.com/azielinski/jobradar/internal/store"
)

// Runner drives one full pipeline pass: extract every source, then
// enrich and persist the union.
type Runner struct {
	driver    browser.Driver
	store     store.Store
	analyzer  *enrich.Analyzer
	scrapeCfg scrape.Config
	sites     []scrape.Site
	logger    *zap.Logger
}

// New constructs a Runner.
func New(
	driver browser.Driver,
	st store.Store,
	analyzer *enrich.Analyzer,
	scrapeCfg scrape.Config,
	sites []scrape.Site,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		driver:    driver,
		store:     st,
		analyzer:  analyzer,
		scrapeCfg: scrapeCfg,
		sites:     sites,
		logger:    logger,
	}
}

// Run extracts each source inside its own failure boundary: one
// source's abort, bot block included, never stops the others. The
// surviving records are then enriched as one batch.
func (r *Runner) Run(ctx context.Context) (enrich.Summary, error) {
	var pending []model.JobOffer
	for _, site := range r.sites {
		if err := ctx.Err(); err != nil {
			return enrich.Summary{}, err
		}
		offers, err := scrape.New(site, r.driver, r.store, r.scrapeCfg, r.logger).PerformFullExtraction(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return enrich.Summary{}, ctx.Err()
			}
			if errors.Is(err, scrape.ErrBotDetected) {
				r.logger.Error("source blocked by anti-automation, moving on",
					zap.String("source", site.Name()))
			} else {
				r.logger.Error("source extraction failed, moving on",
					zap.String("source", site.Name()), zap.Error(err))
			}
			continue
		}
		pending = append(pending, offers...)
	}

	if len(pending) == 0 {
		r.logger.Info("no new postings to enrich")
		return enrich.Summary{}, nil
	}
	r.logger.Info("extraction complete, enriching", zap.Int("pending", len(pending)))
	return r.analyzer.EnrichAll(ctx, pending), nil
}
