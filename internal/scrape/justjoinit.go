package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/azielinski/jobradar/internal/browser"
)

const justJoinItCore = "https://justjoin.it"

// JustJoinIt scrapes justjoin.it, an infinite-scroll listing site.
type JustJoinIt struct {
	name  string
	seeds []string
}

// NewJustJoinIt builds the adapter. name distinguishes category runs
// (e.g. "JustJoinIt-testing") in records and logs.
func NewJustJoinIt(name string, seeds []string) *JustJoinIt {
	if name == "" {
		name = "JustJoinIt"
	}
	return &JustJoinIt{name: name, seeds: seeds}
}

func (s *JustJoinIt) Name() string { return s.name }

func (s *JustJoinIt) ConsentLabel() string { return "Accept All" }

func (s *JustJoinIt) SeedURLs(_ context.Context, _ browser.Session) ([]string, error) {
	return s.seeds, nil
}

// CollectOfferURLs scrolls the listing until the page height stops
// growing, accumulating offer-card links.
func (s *JustJoinIt) CollectOfferURLs(ctx context.Context, page browser.Page) ([]string, error) {
	parts, err := scrollAndCollect(ctx, page, "a.offer-card", "href", 400, 250*time.Millisecond)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.HasPrefix(part, "/") {
			part = justJoinItCore + part
		}
		urls = append(urls, part)
	}
	return urls, nil
}

// Description joins the tech-stack block and the posting body. Both
// sections render lazily, so a missing node surfaces as a timeout the
// orchestrator answers with a reload.
func (s *JustJoinIt) Description(ctx context.Context, page browser.Page) (string, error) {
	tech, err := page.Text(ctx, `div[data-testid="content-techstack"]`)
	if err != nil {
		return "", err
	}
	body, err := page.Text(ctx, `div[data-testid="content-description"]`)
	if err != nil {
		return "", err
	}
	if tech == "" && body == "" {
		return "", nil
	}
	return tech + " | " + body, nil
}
