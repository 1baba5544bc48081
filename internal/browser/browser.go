// Package browser abstracts the headless browser driver used by the
// extraction stage. The orchestrator and site adapters talk to these
// interfaces only; the chromedp implementation lives alongside.
package browser

import "context"

// Driver owns one shared browser process and hands out isolated sessions.
type Driver interface {
	// NewSession opens an isolated browsing session. Sessions are never
	// shared across concurrently running adapters.
	NewSession(ctx context.Context) (Session, error)
	Close() error
}

// Session is one adapter run's browsing context. Pages opened here are
// torn down when the session closes.
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single open tab. Every method honors ctx cancellation; a
// blocked DOM wait fails with the deadline error of its operation
// timeout.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	Title(ctx context.Context) (string, error)

	// ClickByText clicks the first button or link carrying the visible
	// label, with a short timeout. Used for cookie-consent banners.
	ClickByText(ctx context.Context, label string) error

	// Text returns the inner text of the first element matching the CSS
	// selector, waiting up to the driver's DOM timeout for it to appear.
	Text(ctx context.Context, selector string) (string, error)

	// Attributes returns attr of every element matching the CSS selector,
	// skipping elements without the attribute. An empty page yields an
	// empty slice, not an error.
	Attributes(ctx context.Context, selector, attr string) ([]string, error)

	// Evaluate runs a JavaScript expression; out may be nil when the
	// result is irrelevant (scrolling, fire-and-forget DOM pokes).
	Evaluate(ctx context.Context, expr string, out any) error

	Close() error
}
