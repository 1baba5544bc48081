package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/azielinski/jobradar/internal/browser"
)

// Site is the per-source capability set driven by the Orchestrator. A
// Site never opens or closes pages itself; it receives pages the
// orchestrator has already navigated.
type Site interface {
	// Name identifies the source in records and logs.
	Name() string

	// ConsentLabel is the visible label of the cookie-consent button, or
	// "" when the site shows none.
	ConsentLabel() string

	// SeedURLs returns the listing pages to discover postings from. Sites
	// with static pagination may probe the session for the page count.
	SeedURLs(ctx context.Context, sess browser.Session) ([]string, error)

	// CollectOfferURLs extracts every posting URL from an opened listing
	// page, scrolling if the site loads results lazily.
	CollectOfferURLs(ctx context.Context, page browser.Page) ([]string, error)

	// Description extracts the posting text from an opened posting page.
	// It returns ("", nil) when the expected content is absent, a clean
	// miss the orchestrator treats as permanent. A timeout-class error
	// signals the content may still be loading.
	Description(ctx context.Context, page browser.Page) (string, error)
}

// OfferDeduper is an optional Site capability: sources whose posting
// URLs carry volatile listing ids collapse re-published copies here.
type OfferDeduper interface {
	DedupeOfferURLs(urls []string) []string
}

// textContent returns the inner text of the first element matching
// selector, or "" when no element matches. Unlike Page.Text it does not
// wait for the element to appear.
func textContent(ctx context.Context, page browser.Page, selector string) (string, error) {
	expr := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); return el ? el.innerText : ""; })()`,
		selector,
	)
	var out string
	if err := page.Evaluate(ctx, expr, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
