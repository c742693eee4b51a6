package resolve

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"teragrab/internal/config"
	"teragrab/internal/scan"
	"teragrab/internal/ui"
	"teragrab/internal/utils"
)

// downloadAnchorScript mirrors what a user would click: an anchor whose
// href smells like a download, else a button labelled "download" carrying
// the link in a data attribute.
const downloadAnchorScript = `(() => {
	const anchors = Array.from(document.querySelectorAll('a[href*="download"]'));
	if (anchors.length > 0) return anchors[0].href;
	const buttons = Array.from(document.querySelectorAll('button')).filter(
		b => b.textContent.toLowerCase().includes('download')
	);
	if (buttons.length > 0) {
		return buttons[0].getAttribute('data-link') ||
		       buttons[0].getAttribute('href') || '';
	}
	return '';
})()`

// tokenScript tries the token hiding spots in priority order inside the
// live DOM. The raw-HTML pattern engine is the second chance when this
// returns empty.
const tokenScript = `(() => {
	const scripts = document.getElementsByTagName('script');
	for (const script of scripts) {
		if (!script.textContent) continue;
		const match = script.textContent.match(/csrfToken\s*:\s*['"]([^'"]+)['"]/);
		if (match) return match[1];
	}
	const metaTag = document.querySelector('meta[name="csrf-token"]');
	if (metaTag) return metaTag.getAttribute('content') || '';
	if (window.csrfToken) return window.csrfToken;
	const tokenInputs = document.querySelectorAll('input[type="hidden"]');
	for (const input of tokenInputs) {
		if (input.name && (input.name.includes('csrf') || input.name.includes('token'))) {
			return input.value;
		}
	}
	const el = document.querySelector('[data-csrf], [data-token]');
	if (el) return el.dataset.csrf || el.dataset.token || '';
	return '';
})()`

// pageScrape looks for a download link already rendered on the share page.
// When it hits, the token and API machinery never runs.
type pageScrape struct{}

func (pageScrape) Name() string { return "page scrape" }

func (pageScrape) Attempt(st *State) (string, error) {
	var link string
	if err := st.Page.Evaluate(downloadAnchorScript, &link); err != nil {
		return "", fmt.Errorf("page scrape: %w", err)
	}
	return link, nil
}

// apiNegotiation discovers an anti-forgery token, sits out the verification
// window, refreshes cookies, then walks the API mirror list until one hands
// over a dlink.
type apiNegotiation struct {
	cfg    *config.Config
	waiter Waiter
}

func (a *apiNegotiation) Name() string { return "API negotiation" }

func (a *apiNegotiation) Attempt(st *State) (string, error) {
	var token string
	if err := st.Page.Evaluate(tokenScript, &token); err != nil {
		token = ""
	}
	if token == "" {
		if html, err := st.Page.HTML(); err == nil {
			token, _ = scan.FindToken(html)
		}
	}
	if token == "" {
		ui.Warning("Could not find CSRF token, trying to proceed anyway...")
	}
	st.Token = token

	// Window for a human (or an automatic redirect) to clear a
	// verification page; the capture afterwards supersedes the first one.
	a.waiter.Wait(st.Ctx, time.Duration(a.cfg.WaitSeconds)*time.Second)
	if cookies, err := st.Page.Cookies(); err == nil && len(cookies) > 0 {
		st.Cookies = cookies
		st.Client.SetCookies(cookies)
	}

	// Diagnostic only, never fatal.
	shot := filepath.Join(a.cfg.OutputDir, "terabox_page.png")
	if err := st.Page.Screenshot(shot); err == nil && a.cfg.Verbose {
		ui.Info("Screenshot saved to %s", shot)
	}

	headers := map[string]string{}
	if token != "" {
		headers["X-CSRF-Token"] = token
	}
	shareID := utils.ShareID(st.ShareURL)

	var lastErr error
	for _, base := range a.cfg.Endpoints.APIBases {
		link, err := a.tryBase(st, base, shareID, headers)
		if err != nil {
			lastErr = err
			continue
		}
		return link, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no API hosts configured")
	}
	return "", lastErr
}

func (a *apiNegotiation) tryBase(st *State, base, shareID string, headers map[string]string) (string, error) {
	params := url.Values{"shareid": {shareID}, "root": {"1"}}
	var list shareListResponse
	if err := st.Client.GetJSON(st.Ctx, base+"/share/list", params, base, &list); err != nil {
		return "", fmt.Errorf("%s: %w", base, err)
	}
	if list.Errno != 0 {
		return "", fmt.Errorf("%s: list API errno %d (%s)", base, list.Errno, list.Errmsg)
	}
	if len(list.List) == 0 {
		return "", fmt.Errorf("%s: no files in share", base)
	}

	reqBody := downloadRequest{
		ShareID:    shareID,
		Sign:       st.Client.Cookie("sign"),
		Timestamp:  st.Client.Cookie("timestamp"),
		FileIDs:    []int64{list.List[0].FsID},
		Type:       "video",
		Channel:    "dubox",
		ClientType: 0,
		Web:        1,
	}

	var dl shareDownloadResponse
	if err := st.Client.PostJSON(st.Ctx, base+"/api/sharedownload", base, headers, reqBody, &dl); err != nil {
		return "", fmt.Errorf("%s: %w", base, err)
	}
	if dl.Errno != 0 {
		return "", fmt.Errorf("%s: download API errno %d (%s)", base, dl.Errno, dl.Errmsg)
	}
	if len(dl.List) == 0 || dl.List[0].Dlink == "" {
		return "", fmt.Errorf("%s: no download link in response", base)
	}
	return dl.List[0].Dlink, nil
}

// htmlFallback is the last resort: fetch the share page over plain HTTP
// with whatever cookies we hold and search the markup for a download href.
type htmlFallback struct{}

func (htmlFallback) Name() string { return "HTML fallback" }

func (htmlFallback) Attempt(st *State) (string, error) {
	resp, err := st.Client.Get(st.Ctx, st.ShareURL)
	if err != nil {
		return "", fmt.Errorf("plain fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("plain fetch: HTTP %d", resp.StatusCode)
	}

	// Share pages are a few hundred KB; 4 MiB is comfortably above that.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("plain fetch: %w", err)
	}

	if link, ok := scan.FindDownloadHref(string(body)); ok {
		return link, nil
	}
	return "", nil
}
