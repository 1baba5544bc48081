package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Config controls the chromedp-backed driver.
type Config struct {
	Headless          bool
	UserAgent         string
	NavigationTimeout time.Duration
	DOMTimeout        time.Duration
	ClickTimeout      time.Duration
}

func (c *Config) applyDefaults() {
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 120 * time.Second
	}
	if c.DOMTimeout <= 0 {
		c.DOMTimeout = 10 * time.Second
	}
	if c.ClickTimeout <= 0 {
		c.ClickTimeout = 3 * time.Second
	}
}

// Chromedp implements Driver on top of one headless Chrome process.
type Chromedp struct {
	cfg             Config
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	logger          *zap.Logger
}

// NewChromedp launches the browser process and warms up a browser
// context shared by all sessions.
func NewChromedp(cfg Config, logger *zap.Logger) (*Chromedp, error) {
	cfg.applyDefaults()

	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Chromedp{
		cfg:             cfg,
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		logger:          logger,
	}, nil
}

// NewSession opens an isolated tab tree for one adapter run.
func (d *Chromedp) NewSession(_ context.Context) (Session, error) {
	d.logger.Debug("opening browsing session")
	sessCtx, sessCancel := chromedp.NewContext(d.browserCtx)
	return &chromedpSession{
		driver: d,
		ctx:    sessCtx,
		cancel: sessCancel,
	}, nil
}

// Close tears down the browser process.
func (d *Chromedp) Close() error {
	d.browserCancel()
	d.allocatorCancel()
	return nil
}

type chromedpSession struct {
	driver *Chromedp
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *chromedpSession) NewPage(_ context.Context) (Page, error) {
	pageCtx, pageCancel := chromedp.NewContext(s.ctx)
	return &chromedpPage{
		cfg:    s.driver.cfg,
		ctx:    pageCtx,
		cancel: pageCancel,
	}, nil
}

func (s *chromedpSession) Close() error {
	s.cancel()
	return nil
}

type chromedpPage struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
}

// run executes actions against the tab under a per-operation timeout,
// forwarding cancellation from the caller's ctx.
func (p *chromedpPage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, opCancel := context.WithTimeout(p.ctx, timeout)
	defer opCancel()

	stop := forwardCancel(ctx, opCancel)
	defer stop()

	if err := chromedp.Run(opCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if opCtx.Err() != nil {
			return fmt.Errorf("chromedp run: %w", opCtx.Err())
		}
		return fmt.Errorf("chromedp run: %w", err)
	}
	return nil
}

func (p *chromedpPage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, p.cfg.NavigationTimeout,
		p.networkSetup(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *chromedpPage) networkSetup() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if p.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(p.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

func (p *chromedpPage) Reload(ctx context.Context) error {
	return p.run(ctx, p.cfg.NavigationTimeout/2,
		chromedp.Reload(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *chromedpPage) Title(ctx context.Context) (string, error) {
	var title string
	if err := p.run(ctx, p.cfg.DOMTimeout, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

func (p *chromedpPage) ClickByText(ctx context.Context, label string) error {
	sel := fmt.Sprintf(
		`//button[contains(normalize-space(.), %q)] | //a[contains(normalize-space(.), %q)]`,
		label, label,
	)
	return p.run(ctx, p.cfg.ClickTimeout,
		chromedp.Click(sel, chromedp.BySearch, chromedp.NodeVisible),
	)
}

func (p *chromedpPage) Text(ctx context.Context, selector string) (string, error) {
	var text string
	err := p.run(ctx, p.cfg.DOMTimeout,
		chromedp.Text(selector, &text, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (p *chromedpPage) Attributes(ctx context.Context, selector, attr string) ([]string, error) {
	expr := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(e => e.getAttribute(%q)).filter(v => v !== null)`,
		selector, attr,
	)
	var values []string
	if err := p.run(ctx, p.cfg.DOMTimeout, chromedp.Evaluate(expr, &values)); err != nil {
		return nil, err
	}
	return values, nil
}

func (p *chromedpPage) Evaluate(ctx context.Context, expr string, out any) error {
	return p.run(ctx, p.cfg.DOMTimeout, chromedp.Evaluate(expr, out))
}

func (p *chromedpPage) Close() error {
	p.cancel()
	return nil
}

// forwardCancel propagates cancellation of parent onto cancel until the
// returned stop function runs.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
