// Package browser wraps chromedp behind the narrow Inspector surface the
// pipeline stages consume, so scraping heuristics stay testable without a
// real Chrome.
package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"teragrab/internal/core"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Inspector is what a pipeline stage may do with a live page. Implementations
// must release all window/process resources in Close on every path.
type Inspector interface {
	// Navigate opens url and gives the page a bounded settle window for
	// network activity to go quiet.
	Navigate(url string, settle time.Duration) error
	// Evaluate runs a JS expression in the page and unmarshals the result.
	Evaluate(expr string, out interface{}) error
	// HTML returns the current serialized DOM.
	HTML() (string, error)
	// Cookies captures the browser context's cookies by name.
	Cookies() (core.SessionCookies, error)
	// Screenshot writes a full-viewport capture to path.
	Screenshot(path string) error
	Close()
}

// Factory opens a fresh isolated session. Stages hold one for exactly as
// long as they need the page.
type Factory func() (Inspector, error)

type Options struct {
	Headless  bool
	Timeout   time.Duration
	UserAgent string
}

// Session drives one isolated Chrome context. The parent context flows into
// every CDP call, so an interrupt cancels in-flight navigation too.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

func NewSession(parent context.Context, opts Options) (*Session, error) {
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.UserAgent(ua),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	timed, cancelTimeout := context.WithTimeout(browserCtx, timeout)

	s := &Session{
		ctx:     timed,
		cancels: []context.CancelFunc{cancelTimeout, cancelBrowser, cancelAlloc},
	}

	// Start the browser process now so launch failures surface here, not
	// in the middle of a stage.
	if err := chromedp.Run(timed); err != nil {
		s.Close()
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	return s, nil
}

func (s *Session) Navigate(url string, settle time.Duration) error {
	return chromedp.Run(s.ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
	)
}

func (s *Session) Evaluate(expr string, out interface{}) error {
	return chromedp.Run(s.ctx, chromedp.Evaluate(expr, out))
}

func (s *Session) HTML() (string, error) {
	var html string
	err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html))
	return html, err
}

func (s *Session) Cookies() (core.SessionCookies, error) {
	out := core.SessionCookies{}
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			out[c.Name] = c.Value
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) Screenshot(path string) error {
	var buf []byte
	if err := chromedp.Run(s.ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

// Close tears the session down in reverse acquisition order. Safe to call
// after a failed launch.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}
