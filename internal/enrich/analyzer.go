package enrich

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/azielinski/jobradar/internal/metrics"
	"github.com/azielinski/jobradar/internal/model"
	"github.com/azielinski/jobradar/internal/store"
)

// Config controls one enrichment run. Profile and Expectations are the
// candidate-profile and scoring-rubric prompt blocks, passed through
// verbatim.
type Config struct {
	Workers           int
	MinAnalysisLength int
	Profile           string
	Expectations      string
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 10
	}
	if c.MinAnalysisLength <= 0 {
		c.MinAnalysisLength = 80
	}
}

// Summary counts the terminal outcomes of one run. Every submitted
// record lands in exactly one bucket.
type Summary struct {
	Persisted int
	Skipped   int
	Failed    int
}

// Analyzer drains pending records through a fixed worker pool, scoring
// and persisting each one. Store writes are serialized through a single
// mutex; everything else runs concurrently.
type Analyzer struct {
	scorer  Scorer
	store   store.Store
	cfg     Config
	logger  *zap.Logger
	writeMu sync.Mutex
}

// New constructs an Analyzer.
func New(scorer Scorer, st store.Store, cfg Config, logger *zap.Logger) *Analyzer {
	cfg.applyDefaults()
	return &Analyzer{scorer: scorer, store: st, cfg: cfg, logger: logger}
}

// EnrichAll processes every offer to a terminal outcome: persisted,
// skipped, or a logged failure. Per-item failures never abort the run;
// context cancellation drains the remaining queue as failures so no
// item vanishes without a trace.
func (a *Analyzer) EnrichAll(ctx context.Context, offers []model.JobOffer) Summary {
	jobs := make(chan model.JobOffer)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var sum Summary

	record := func(outcome string) {
		metrics.EnrichmentDone(outcome)
		mu.Lock()
		defer mu.Unlock()
		switch outcome {
		case metrics.OutcomePersisted:
			sum.Persisted++
		case metrics.OutcomeSkipped:
			sum.Skipped++
		default:
			sum.Failed++
		}
	}

	for i := 0; i < a.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for offer := range jobs {
				record(a.processOne(ctx, offer))
			}
		}()
	}

	for _, offer := range offers {
		if ctx.Err() != nil {
			a.logger.Error("enrichment cancelled before dispatch",
				zap.String("url", offer.URL), zap.Error(ctx.Err()))
			record(metrics.OutcomeFailed)
			continue
		}
		jobs <- offer
	}
	close(jobs)
	wg.Wait()

	a.logger.Info("enrichment run finished",
		zap.Int("persisted", sum.Persisted),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed),
	)
	return sum
}

func (a *Analyzer) processOne(ctx context.Context, offer model.JobOffer) string {
	metrics.AnalysisStarted()
	defer metrics.AnalysisFinished()

	logger := a.logger.With(zap.String("url", offer.URL), zap.String("name", offer.Name))

	known, err := a.store.Exists(ctx, offer.URL)
	if err != nil {
		logger.Error("existence re-check failed, processing anyway", zap.Error(err))
	} else if known {
		logger.Warn("record already stored, skipping enrichment")
		return metrics.OutcomeSkipped
	}

	logger.Info("requesting analysis")
	raw, err := a.scorer.Complete(ctx, BuildMessages(a.cfg.Profile, a.cfg.Expectations, offer))
	if err != nil {
		logger.Error("scoring request failed", zap.Error(err))
		return metrics.OutcomeFailed
	}

	analysis, parsed := CleanResponse(raw)
	if len(analysis) < a.cfg.MinAnalysisLength {
		logger.Warn("analysis too short, treated as noise",
			zap.Int("length", len(analysis)),
			zap.Int("minimum", a.cfg.MinAnalysisLength),
		)
		return metrics.OutcomeSkipped
	}

	offer.Analysis = analysis
	offer.OfferRating, offer.CandidateRating = ExtractRatings(parsed, analysis)

	a.writeMu.Lock()
	err = a.store.Insert(ctx, offer)
	a.writeMu.Unlock()
	if err != nil {
		logger.Error("persist failed", zap.Error(err))
		return metrics.OutcomeFailed
	}

	logger.Info("record enriched and persisted",
		zap.Int("offer_rating", offer.OfferRating),
		zap.Int("candidate_rating", offer.CandidateRating),
	)
	return metrics.OutcomePersisted
}
