package scrape

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/azielinski/jobradar/internal/browser"
	"github.com/azielinski/jobradar/internal/metrics"
	"github.com/azielinski/jobradar/internal/model"
	"github.com/azielinski/jobradar/internal/store"
)

// ErrBotDetected signals that a page title matched an anti-automation
// banner. It is the one condition that aborts the whole batch instead of
// degrading to omission; the caller decides whether to retry later.
var ErrBotDetected = errors.New("bot detection triggered")

// Config controls one extraction run.
type Config struct {
	// MaxConcurrency bounds simultaneous open pages; discovery and detail
	// fetches share the same gate.
	MaxConcurrency int

	// SettleDelay is the fixed pause after navigation before the DOM is
	// interrogated.
	SettleDelay time.Duration

	// RetryAttempts bounds description extraction attempts per page.
	RetryAttempts int

	// ForbiddenTitles are anti-automation banner phrases matched against
	// page titles, case-insensitively by substring.
	ForbiddenTitles []string
}

func (c *Config) applyDefaults() {
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 15
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
}

// Orchestrator drives one Site through discovery, store pre-filtering,
// bounded concurrent detail fetching, and record assembly.
type Orchestrator struct {
	site      Site
	driver    browser.Driver
	store     store.Store
	cfg       Config
	blocklist *titleBlocklist
	logger    *zap.Logger
}

// New constructs an Orchestrator for one source.
func New(site Site, driver browser.Driver, st store.Store, cfg Config, logger *zap.Logger) *Orchestrator {
	cfg.applyDefaults()
	return &Orchestrator{
		site:      site,
		driver:    driver,
		store:     st,
		cfg:       cfg,
		blocklist: newTitleBlocklist(cfg.ForbiddenTitles),
		logger:    logger.With(zap.String("source", site.Name())),
	}
}

// PerformFullExtraction runs the whole extraction pipeline for the
// source. Ordinary per-URL failures degrade to omission; ErrBotDetected
// aborts the batch and is returned instead of partial results.
func (o *Orchestrator) PerformFullExtraction(ctx context.Context) ([]model.JobOffer, error) {
	sess, err := o.driver.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("open browsing session: %w", err)
	}
	defer sess.Close()

	seeds, err := o.site.SeedURLs(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("resolve seed urls: %w", err)
	}

	urls, err := o.discover(ctx, sess, seeds)
	if err != nil {
		return nil, err
	}
	o.logger.Info("discovery finished", zap.Int("urls", len(urls)))

	urls = o.filterSeen(ctx, urls)
	if deduper, ok := o.site.(OfferDeduper); ok {
		urls = deduper.DedupeOfferURLs(urls)
	}
	if len(urls) == 0 {
		o.logger.Warn("no new posting urls after filtering")
		return nil, nil
	}

	offers, err := o.fetchDetails(ctx, sess, urls)
	if err != nil {
		return nil, err
	}
	o.logger.Info("extraction finished",
		zap.Int("ok", len(offers)),
		zap.Int("failed", len(urls)-len(offers)),
	)
	return offers, nil
}

// discover opens every seed listing page and unions the posting URLs it
// yields. Seed failures are logged and skipped.
func (o *Orchestrator) discover(ctx context.Context, sess browser.Session, seeds []string) ([]string, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.MaxConcurrency)

	var mu sync.Mutex
	perSeed := make([][]string, len(seeds))

	for i, seed := range seeds {
		g.Go(func() error {
			urls, err := o.discoverSeed(gctx, sess, seed)
			if err != nil {
				o.logger.Error("seed discovery failed", zap.String("seed", seed), zap.Error(err))
				return nil
			}
			mu.Lock()
			perSeed[i] = urls
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var union []string
	for _, urls := range perSeed {
		for _, u := range urls {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			union = append(union, u)
		}
	}
	return union, nil
}

func (o *Orchestrator) discoverSeed(ctx context.Context, sess browser.Session, seed string) ([]string, error) {
	page, err := sess.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("open listing page: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, seed); err != nil {
		return nil, fmt.Errorf("navigate listing: %w", err)
	}
	o.dismissConsent(ctx, page)
	o.settle(ctx)

	urls, err := o.site.CollectOfferURLs(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("collect posting urls: %w", err)
	}
	o.logger.Debug("seed collected", zap.String("seed", seed), zap.Int("urls", len(urls)))
	return urls, nil
}

// dismissConsent clicks the cookie banner if one shows up. Best effort;
// absence and timeouts are ignored.
func (o *Orchestrator) dismissConsent(ctx context.Context, page browser.Page) {
	label := o.site.ConsentLabel()
	if label == "" {
		return
	}
	if err := page.ClickByText(ctx, label); err != nil {
		o.logger.Debug("cookie banner not dismissed", zap.Error(err))
	}
}

// filterSeen drops URLs the store already holds. Best-effort pre-filter:
// concurrent producers may race past it, so the store's URL uniqueness
// stays the final arbiter.
func (o *Orchestrator) filterSeen(ctx context.Context, urls []string) []string {
	fresh := urls[:0]
	for _, u := range urls {
		known, err := o.store.Exists(ctx, u)
		if err != nil {
			o.logger.Error("store lookup failed, keeping url", zap.String("url", u), zap.Error(err))
			fresh = append(fresh, u)
			continue
		}
		if known {
			o.logger.Debug("already stored, skipping", zap.String("url", u))
			continue
		}
		fresh = append(fresh, u)
	}
	return fresh
}

// fetchDetails runs admission-gated detail fetches. ErrBotDetected from
// any fetch cancels every sibling; the group wait guarantees their
// teardown completes before the batch returns.
func (o *Orchestrator) fetchDetails(ctx context.Context, sess browser.Session, urls []string) ([]model.JobOffer, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.MaxConcurrency)

	var mu sync.Mutex
	var offers []model.JobOffer

	for _, u := range urls {
		g.Go(func() error {
			metrics.FetchStarted()
			defer metrics.FetchFinished()

			offer, err := o.fetchOne(gctx, sess, u)
			switch {
			case errors.Is(err, ErrBotDetected):
				metrics.PageProcessed(o.site.Name(), metrics.OutcomeBotBlocked)
				metrics.BotBlocked(o.site.Name())
				o.logger.Error("bot detection triggered, cancelling batch",
					zap.String("url", u), zap.Error(err))
				return err
			case err != nil:
				metrics.PageProcessed(o.site.Name(), metrics.OutcomeFailed)
				o.logger.Error("posting fetch failed", zap.String("url", u), zap.Error(err))
				return nil
			case offer == nil:
				metrics.PageProcessed(o.site.Name(), metrics.OutcomeNoContent)
				o.logger.Warn("no job description found", zap.String("url", u))
				return nil
			}

			metrics.PageProcessed(o.site.Name(), metrics.OutcomeScraped)
			mu.Lock()
			offers = append(offers, *offer)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return offers, nil
}

// fetchOne processes a single posting URL: navigate, settle, classify the
// title, then extract the description under the retry bound. A nil offer
// with nil error means the posting has no extractable content.
func (o *Orchestrator) fetchOne(ctx context.Context, sess browser.Session, url string) (*model.JobOffer, error) {
	page, err := sess.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := o.settle(ctx); err != nil {
		return nil, err
	}

	title, err := page.Title(ctx)
	if err != nil {
		return nil, fmt.Errorf("read title: %w", err)
	}
	if o.blocklist.Matches(title) {
		return nil, fmt.Errorf("%w: title %q", ErrBotDetected, title)
	}

	description, err := o.extractWithRetry(ctx, page, url)
	if err != nil {
		return nil, err
	}
	if description == "" {
		// Clean miss: the page rendered but carries no posting content.
		return nil, nil
	}

	return &model.JobOffer{
		Name:        title,
		Source:      o.site.Name(),
		URL:         url,
		Description: SimplifyText(description),
		Added:       time.Now().UTC(),
	}, nil
}

// extractWithRetry reloads and retries on timeout-class failures up to
// the configured bound. A clean miss is returned immediately: absence is
// assumed permanent.
func (o *Orchestrator) extractWithRetry(ctx context.Context, page browser.Page, url string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= o.cfg.RetryAttempts; attempt++ {
		description, err := o.site.Description(ctx, page)
		if err == nil {
			return description, nil
		}
		lastErr = err
		if !isTimeout(err) || attempt == o.cfg.RetryAttempts {
			break
		}
		o.logger.Debug("description not ready, reloading",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Int("max", o.cfg.RetryAttempts),
		)
		if rerr := page.Reload(ctx); rerr != nil {
			return "", fmt.Errorf("reload: %w", rerr)
		}
		if serr := o.settle(ctx); serr != nil {
			return "", serr
		}
	}
	return "", fmt.Errorf("extract description: %w", lastErr)
}

func (o *Orchestrator) settle(ctx context.Context) error {
	select {
	case <-time.After(o.cfg.SettleDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
