package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/azielinski/jobradar/internal/browser"
	"github.com/azielinski/jobradar/internal/canonical"
)

// PracujPl scrapes it.pracuj.pl, a statically paginated listing site.
// Postings there are frequently re-published under a fresh listing id,
// so the adapter collapses URL variants keeping the highest id.
type PracujPl struct {
	name   string
	seeds  []string
	logger *zap.Logger
}

// NewPracujPl builds the adapter.
func NewPracujPl(name string, seeds []string, logger *zap.Logger) *PracujPl {
	if name == "" {
		name = "Pracujpl"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PracujPl{name: name, seeds: seeds, logger: logger}
}

func (s *PracujPl) Name() string { return s.name }

func (s *PracujPl) ConsentLabel() string { return "Akceptuj wszystkie" }

// SeedURLs probes each configured listing URL for its maximum page
// number and expands it into per-page URLs. A failed probe degrades to
// the bare seed.
func (s *PracujPl) SeedURLs(ctx context.Context, sess browser.Session) ([]string, error) {
	var seeds []string
	for _, seed := range s.seeds {
		maxPage, err := s.probeMaxPage(ctx, sess, seed)
		if err != nil {
			s.logger.Warn("max page probe failed, using single page",
				zap.String("seed", seed), zap.Error(err))
			seeds = append(seeds, seed)
			continue
		}
		for i := 1; i <= maxPage; i++ {
			paged, err := withPageNumber(seed, i)
			if err != nil {
				return nil, fmt.Errorf("build page url: %w", err)
			}
			seeds = append(seeds, paged)
		}
	}
	return seeds, nil
}

func (s *PracujPl) probeMaxPage(ctx context.Context, sess browser.Session, seed string) (int, error) {
	page, err := sess.NewPage(ctx)
	if err != nil {
		return 0, fmt.Errorf("open probe page: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, seed); err != nil {
		return 0, fmt.Errorf("navigate probe page: %w", err)
	}
	raw, err := page.Text(ctx, `span[data-test="top-pagination-max-page-number"]`)
	if err != nil {
		return 0, err
	}
	maxPage, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse max page number %q: %w", raw, err)
	}
	return maxPage, nil
}

func withPageNumber(seed string, page int) (string, error) {
	parsed, err := url.Parse(seed)
	if err != nil {
		return "", err
	}
	q := parsed.Query()
	q.Set("pn", strconv.Itoa(page))
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

// CollectOfferURLs reads every offer link off the listing page, stripped
// of query and fragment.
func (s *PracujPl) CollectOfferURLs(ctx context.Context, page browser.Page) ([]string, error) {
	hrefs, err := page.Attributes(ctx, `a[data-test="link-offer"]`, "href")
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		parsed, err := url.Parse(href)
		if err != nil {
			s.logger.Warn("skipping unparsable offer link", zap.String("href", href))
			continue
		}
		parsed.RawQuery = ""
		parsed.Fragment = ""
		urls = append(urls, parsed.String())
	}
	return urls, nil
}

// Description concatenates the posting's optional sections. Pracuj pages
// are server-rendered, so an empty result is a clean miss rather than a
// render race.
func (s *PracujPl) Description(ctx context.Context, page browser.Page) (string, error) {
	sections := []string{
		`div[data-scroll-id="technologies-expected-1"]`,
		`div[data-scroll-id="technologies-optional-1"]`,
		`ul[data-test="text-about-project"]`,
		`section[data-test="section-responsibilities"]`,
		`section[data-test="section-requirements"]`,
		`section[data-test="section-offered"]`,
		`section[data-test="section-benefits"]`,
	}

	var parts []string
	for _, sel := range sections {
		text, err := textContent(ctx, page, sel)
		if err != nil {
			return "", err
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

// DedupeOfferURLs collapses re-published copies, keeping the variant
// with the highest listing id.
func (s *PracujPl) DedupeOfferURLs(urls []string) []string {
	return canonical.Dedupe(urls, canonical.KeepMaxID)
}
