package scrape

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/azielinski/jobradar/internal/browser"
)

// fixture is a scriptable in-process browser shared by driver, session,
// and pages.
type fixture struct {
	mu       sync.Mutex
	titles   map[string]string   // url -> page title
	navErr   map[string]error    // url -> navigation failure
	texts    map[string]string   // url + "|" + selector -> Text result
	textErr  map[string]error    // url + "|" + selector -> Text failure
	attrs    map[string][]string // url + "|" + selector + "|" + attr -> Attributes result
	evals    map[string]string   // url + "|" + selector -> textContent result
	reloads  map[string]int
	navCount int
}

func newFixture() *fixture {
	return &fixture{
		titles:  map[string]string{},
		navErr:  map[string]error{},
		texts:   map[string]string{},
		textErr: map[string]error{},
		attrs:   map[string][]string{},
		evals:   map[string]string{},
		reloads: map[string]int{},
	}
}

func (f *fixture) driver() browser.Driver { return &fakeDriver{f: f} }

func (f *fixture) reloadCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reloads[url]
}

type fakeDriver struct{ f *fixture }

func (d *fakeDriver) NewSession(context.Context) (browser.Session, error) {
	return &fakeSession{f: d.f}, nil
}

func (d *fakeDriver) Close() error { return nil }

type fakeSession struct{ f *fixture }

func (s *fakeSession) NewPage(context.Context) (browser.Page, error) {
	return &fakePage{f: s.f}, nil
}

func (s *fakeSession) Close() error { return nil }

type fakePage struct {
	f   *fixture
	url string
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.f.mu.Lock()
	p.f.navCount++
	p.f.mu.Unlock()
	p.url = url
	return p.f.navErr[url]
}

func (p *fakePage) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	p.f.reloads[p.url]++
	return nil
}

func (p *fakePage) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	if t, ok := p.f.titles[p.url]; ok {
		return t, nil
	}
	return "Job posting", nil
}

func (p *fakePage) ClickByText(ctx context.Context, _ string) error {
	return ctx.Err()
}

func (p *fakePage) Text(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	key := p.url + "|" + selector
	if err, ok := p.f.textErr[key]; ok {
		return "", err
	}
	return p.f.texts[key], nil
}

func (p *fakePage) Attributes(ctx context.Context, selector, attr string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	return p.f.attrs[p.url+"|"+selector+"|"+attr], nil
}

// Evaluate serves textContent lookups by matching the selector embedded
// in the expression; other expressions yield the zero value.
func (p *fakePage) Evaluate(ctx context.Context, expr string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	if s, ok := out.(*string); ok {
		for key, val := range p.f.evals {
			parts := strings.SplitN(key, "|", 2)
			if len(parts) != 2 || parts[0] != p.url {
				continue
			}
			if strings.Contains(expr, strconv.Quote(parts[1])) {
				*s = val
				return nil
			}
		}
		*s = ""
	}
	return nil
}

func (p *fakePage) Close() error { return nil }
