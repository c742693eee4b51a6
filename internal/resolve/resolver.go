// Package resolve turns a share URL plus scraped metadata into a direct
// download link. Candidate approaches are ordered strategies; the first one
// to produce a link wins and the most specific failure is what surfaces
// when all of them strike out.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teragrab/internal/browser"
	"teragrab/internal/client"
	"teragrab/internal/config"
	"teragrab/internal/core"
	"teragrab/internal/ui"
)

const settleWait = 5 * time.Second

// State is the shared context a strategy works against. Strategies may
// refresh Cookies and Token in place; everything else is read-only.
type State struct {
	Ctx      context.Context
	ShareURL string
	Meta     *core.VideoMetadata
	Page     browser.Inspector
	Client   *client.Client
	Cookies  core.SessionCookies
	Token    string
}

// Strategy is one way of obtaining a direct link. An empty link with a nil
// error means "nothing found here, try the next one".
type Strategy interface {
	Name() string
	Attempt(st *State) (string, error)
}

type Resolver struct {
	cfg        *config.Config
	sessions   browser.Factory
	client     *client.Client
	strategies []Strategy
}

// New wires the default strategy chain: scrape the page for a visible
// download link, negotiate with the API mirrors, then fall back to a plain
// authenticated GET. A nil waiter gets the real clock.
func New(cfg *config.Config, sessions browser.Factory, cl *client.Client, waiter Waiter) *Resolver {
	if waiter == nil {
		waiter = sleepWaiter{}
	}
	return &Resolver{
		cfg:      cfg,
		sessions: sessions,
		client:   cl,
		strategies: []Strategy{
			&pageScrape{},
			&apiNegotiation{cfg: cfg, waiter: waiter},
			&htmlFallback{},
		},
	}
}

// Resolve opens the share page once and runs the strategy chain against it.
// The browser session is released on every path. Strategy failures are
// recorded, not fatal; the last one is returned when the chain is exhausted.
func (r *Resolver) Resolve(ctx context.Context, shareURL string, meta *core.VideoMetadata) (string, error) {
	page, err := r.sessions()
	if err != nil {
		return "", fmt.Errorf("resolution error: %w", err)
	}
	defer page.Close()

	st := &State{
		Ctx:      ctx,
		ShareURL: shareURL,
		Meta:     meta,
		Page:     page,
		Client:   r.client,
	}

	if err := page.Navigate(shareURL, settleWait); err != nil {
		return "", fmt.Errorf("resolution error: %w", err)
	}

	// First cookie capture; API negotiation re-captures after the
	// verification window and that one supersedes this.
	if cookies, err := page.Cookies(); err == nil && len(cookies) > 0 {
		st.Cookies = cookies
		r.client.SetCookies(cookies)
		if r.cfg.Verbose {
			for name := range cookies {
				ui.Info("cookie captured: %s", name)
			}
		}
	}

	var lastErr error
	for _, s := range r.strategies {
		link, err := s.Attempt(st)
		if err != nil {
			lastErr = err
			if r.cfg.Verbose {
				ui.Warning("%s: %v", s.Name(), err)
			}
			continue
		}
		if link != "" {
			ui.Success("Got download link via %s", s.Name())
			return link, nil
		}
	}

	if lastErr == nil {
		lastErr = errors.New("no download link found")
	}
	return "", lastErr
}
