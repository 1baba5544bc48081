package scrape

import (
	"context"
	"strings"

	"github.com/azielinski/jobradar/internal/browser"
)

const hexagonCore = "https://hexagon.com"

// Hexagon scrapes the hexagon.com careers board. Posting pages come in
// several layout generations, so description extraction walks a fallback
// chain of containers.
type Hexagon struct {
	name  string
	seeds []string
}

// NewHexagon builds the adapter.
func NewHexagon(name string, seeds []string) *Hexagon {
	if name == "" {
		name = "Hexagon"
	}
	return &Hexagon{name: name, seeds: seeds}
}

func (s *Hexagon) Name() string { return s.name }

func (s *Hexagon) ConsentLabel() string { return "Accept all" }

func (s *Hexagon) SeedURLs(_ context.Context, _ browser.Session) ([]string, error) {
	return s.seeds, nil
}

// CollectOfferURLs reads the job list; the board intermittently links
// through a "/c/new" redirect that is stripped off.
func (s *Hexagon) CollectOfferURLs(ctx context.Context, page browser.Page) ([]string, error) {
	hrefs, err := page.Attributes(ctx, "div.job-url a", "href")
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		href = strings.ReplaceAll(href, "/c/new", "")
		if strings.HasPrefix(href, "/") {
			href = hexagonCore + href
		}
		urls = append(urls, href)
	}
	return urls, nil
}

// Description tries each known layout container in turn; when none holds
// text the posting is treated as having no extractable content.
func (s *Hexagon) Description(ctx context.Context, page browser.Page) (string, error) {
	selectors := []string{
		"span[itemprop=description]",
		"div[data-reach-tab-panels]",
		`div.ng-scope[ng-repeat*="JobDetailQuestions"]`,
	}
	for _, sel := range selectors {
		text, err := textContent(ctx, page, sel)
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
	}
	return "", nil
}
