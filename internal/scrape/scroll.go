package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/azielinski/jobradar/internal/browser"
)

// scrollAndCollect walks an infinite-scroll listing, harvesting attr from
// every element matching selector, until scrolling stops advancing the
// viewport. Returned URLs are unique and in first-seen order.
func scrollAndCollect(
	ctx context.Context,
	page browser.Page,
	selector, attr string,
	scrollBy int,
	wait time.Duration,
) ([]string, error) {
	seen := make(map[string]struct{})
	var collected []string
	offset := 0

	for {
		var current float64
		if err := page.Evaluate(ctx, "window.scrollY", &current); err != nil {
			return nil, fmt.Errorf("read scroll position: %w", err)
		}

		values, err := page.Attributes(ctx, selector, attr)
		if err != nil {
			return nil, fmt.Errorf("collect %q attributes: %w", selector, err)
		}
		for _, v := range values {
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			collected = append(collected, v)
		}

		scroll := fmt.Sprintf("window.scrollTo(%d, %d)", offset, offset+scrollBy)
		if err := page.Evaluate(ctx, scroll, nil); err != nil {
			return nil, fmt.Errorf("scroll listing: %w", err)
		}
		offset += scrollBy

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		var next float64
		if err := page.Evaluate(ctx, "window.scrollY", &next); err != nil {
			return nil, fmt.Errorf("read scroll position: %w", err)
		}
		if next <= current {
			break
		}
	}
	return collected, nil
}
