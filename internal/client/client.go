// Package client is the one place that knows how to talk to the share
// service over plain HTTP: every cookie-bearing request the resolver and
// the downloader make goes through it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"teragrab/internal/core"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Client struct {
	hc      *http.Client
	cookies core.SessionCookies
	referer string
}

// New builds a client whose requests carry browser-like headers and the
// original share URL as referer. The transport times out on slow response
// headers but never on the body, so large downloads complete regardless
// of size.
func New(referer string) *Client {
	return &Client{
		referer: referer,
		hc: &http.Client{
			Timeout: 0,
			Transport: &http.Transport{
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
}

// SetCookies replaces the session cookies on all subsequent requests. The
// resolver calls this again after the verification wait, superseding the
// first capture.
func (c *Client) SetCookies(cs core.SessionCookies) {
	c.cookies = cs.Clone()
}

// Cookie returns a single captured cookie value, or "" when absent.
func (c *Client) Cookie(name string) string {
	return c.cookies[name]
}

func (c *Client) apply(req *http.Request, origin string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	if c.referer != "" {
		req.Header.Set("Referer", c.referer)
	}
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

// GetJSON issues an authenticated GET and decodes the JSON response body.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, origin string, out interface{}) error {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.apply(req, origin)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", rawURL, err)
	}
	return nil
}

// PostJSON issues an authenticated POST with a JSON body and decodes the
// JSON response. Extra headers (such as X-CSRF-Token) overlay the defaults.
func (c *Client) PostJSON(ctx context.Context, rawURL, origin string, headers map[string]string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.apply(req, origin)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", rawURL, err)
	}
	return nil
}

// Get issues an authenticated GET and hands the response back unread, for
// callers that stream the body. The caller owns closing it.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.apply(req, "")
	req.Header.Set("Accept", "*/*")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
