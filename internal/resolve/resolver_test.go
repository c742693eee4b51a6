package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"teragrab/internal/browser"
	"teragrab/internal/client"
	"teragrab/internal/config"
	"teragrab/internal/core"
)

type fakeInspector struct {
	anchorLink  string
	token       string
	html        string
	cookies     core.SessionCookies
	navigateErr error

	anchorCalls int
	tokenCalls  int
	closed      int
}

func (f *fakeInspector) Navigate(url string, settle time.Duration) error { return f.navigateErr }

func (f *fakeInspector) Evaluate(expr string, out interface{}) error {
	s, ok := out.(*string)
	if !ok {
		return fmt.Errorf("unexpected evaluate target %T", out)
	}
	switch {
	case strings.Contains(expr, `a[href*="download"]`):
		f.anchorCalls++
		*s = f.anchorLink
	case strings.Contains(expr, "csrfToken"):
		f.tokenCalls++
		*s = f.token
	}
	return nil
}

func (f *fakeInspector) HTML() (string, error) { return f.html, nil }

func (f *fakeInspector) Cookies() (core.SessionCookies, error) { return f.cookies.Clone(), nil }

func (f *fakeInspector) Screenshot(path string) error { return nil }

func (f *fakeInspector) Close() { f.closed++ }

type fakeWaiter struct {
	calls []time.Duration
}

func (w *fakeWaiter) Wait(ctx context.Context, d time.Duration) {
	w.calls = append(w.calls, d)
}

type apiHost struct {
	srv           *httptest.Server
	listCalls     int
	downloadCalls int
	lastBody      downloadRequest
	lastCSRF      string
}

// newAPIHost serves the list/download endpoints. A non-zero errno makes the
// host decline at the listing step, the way a dead mirror does.
func newAPIHost(t *testing.T, errno int, dlink string) *apiHost {
	t.Helper()
	h := &apiHost{}
	mux := http.NewServeMux()
	mux.HandleFunc("/share/list", func(w http.ResponseWriter, r *http.Request) {
		h.listCalls++
		if errno != 0 {
			fmt.Fprintf(w, `{"errno":%d,"errmsg":"mirror down"}`, errno)
			return
		}
		fmt.Fprint(w, `{"errno":0,"list":[{"fs_id":111222,"server_filename":"v.mp4","size":42}]}`)
	})
	mux.HandleFunc("/api/sharedownload", func(w http.ResponseWriter, r *http.Request) {
		h.downloadCalls++
		h.lastCSRF = r.Header.Get("X-CSRF-Token")
		if err := json.NewDecoder(r.Body).Decode(&h.lastBody); err != nil {
			t.Errorf("bad download request body: %v", err)
		}
		if dlink == "" {
			fmt.Fprint(w, `{"errno":0,"list":[{}]}`)
			return
		}
		fmt.Fprintf(w, `{"errno":0,"list":[{"dlink":%q}]}`, dlink)
	})
	h.srv = httptest.NewServer(mux)
	t.Cleanup(h.srv.Close)
	return h
}

func testConfig(t *testing.T, bases ...string) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.OutputDir = t.TempDir()
	cfg.WaitSeconds = 12
	cfg.Endpoints.APIBases = bases
	return cfg
}

func newResolver(cfg *config.Config, fake *fakeInspector, shareURL string, waiter Waiter) *Resolver {
	factory := browser.Factory(func() (browser.Inspector, error) { return fake, nil })
	return New(cfg, factory, client.New(shareURL), waiter)
}

func TestPageScrapeShortCircuits(t *testing.T) {
	host := newAPIHost(t, 2, "")
	cfg := testConfig(t, host.srv.URL)
	waiter := &fakeWaiter{}
	fake := &fakeInspector{
		anchorLink: "https://cdn.example.test/direct?download=1",
		cookies:    core.SessionCookies{"ndus": "x"},
	}

	link, err := newResolver(cfg, fake, "https://terabox.com/s/abc", waiter).
		Resolve(context.Background(), "https://terabox.com/s/abc", &core.VideoMetadata{Name: "v"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if link != fake.anchorLink {
		t.Errorf("link = %q, want scraped anchor", link)
	}

	if fake.tokenCalls != 0 {
		t.Errorf("token discovery ran %d times after a successful scrape", fake.tokenCalls)
	}
	if len(waiter.calls) != 0 {
		t.Errorf("verification wait ran %d times after a successful scrape", len(waiter.calls))
	}
	if host.listCalls != 0 {
		t.Errorf("API host called %d times after a successful scrape", host.listCalls)
	}
	if fake.closed != 1 {
		t.Errorf("session closed %d times, want 1", fake.closed)
	}
}

func TestAPIHostsTriedInOrder(t *testing.T) {
	h1 := newAPIHost(t, 2, "")
	h2 := newAPIHost(t, 9, "")
	h3 := newAPIHost(t, 0, "https://d3.example.test/file.mp4")
	cfg := testConfig(t, h1.srv.URL, h2.srv.URL, h3.srv.URL)
	waiter := &fakeWaiter{}
	fake := &fakeInspector{
		token:   "tok-123",
		cookies: core.SessionCookies{"sign": "SG", "timestamp": "1700000000"},
	}

	shareURL := "https://terabox.com/s/share99"
	link, err := newResolver(cfg, fake, shareURL, waiter).
		Resolve(context.Background(), shareURL, &core.VideoMetadata{Name: "v"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if link != "https://d3.example.test/file.mp4" {
		t.Errorf("link = %q", link)
	}

	// Two failing hosts plus the winner: exactly N+1 listing calls.
	for i, h := range []*apiHost{h1, h2, h3} {
		if h.listCalls != 1 {
			t.Errorf("host %d listed %d times, want 1", i+1, h.listCalls)
		}
	}
	if h1.downloadCalls != 0 || h2.downloadCalls != 0 {
		t.Error("failing hosts received download calls")
	}
	if h3.downloadCalls != 1 {
		t.Errorf("winning host received %d download calls, want 1", h3.downloadCalls)
	}

	// Negotiation payload carries the ids and cookie-derived signature.
	body := h3.lastBody
	if body.ShareID != "share99" {
		t.Errorf("shareid = %q, want share99", body.ShareID)
	}
	if len(body.FileIDs) != 1 || body.FileIDs[0] != 111222 {
		t.Errorf("file_ids = %v, want [111222]", body.FileIDs)
	}
	if body.Sign != "SG" || body.Timestamp != "1700000000" {
		t.Errorf("sign/timestamp = %q/%q, want cookie values", body.Sign, body.Timestamp)
	}
	if body.Type != "video" || body.Channel != "dubox" || body.Web != 1 {
		t.Errorf("constant fields off: %+v", body)
	}
	if h3.lastCSRF != "tok-123" {
		t.Errorf("X-CSRF-Token = %q, want tok-123", h3.lastCSRF)
	}

	if len(waiter.calls) != 1 || waiter.calls[0] != 12*time.Second {
		t.Errorf("verification wait calls = %v, want one 12s wait", waiter.calls)
	}
	if fake.closed != 1 {
		t.Errorf("session closed %d times, want 1", fake.closed)
	}
}

func TestEmptyDlinkMovesToNextHost(t *testing.T) {
	h1 := newAPIHost(t, 0, "") // lists fine, returns no dlink
	h2 := newAPIHost(t, 0, "https://d2.example.test/file.mp4")
	cfg := testConfig(t, h1.srv.URL, h2.srv.URL)
	fake := &fakeInspector{cookies: core.SessionCookies{"sign": "s"}}

	link, err := newResolver(cfg, fake, "https://terabox.com/s/a", &fakeWaiter{}).
		Resolve(context.Background(), "https://terabox.com/s/a", &core.VideoMetadata{Name: "v"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if link != "https://d2.example.test/file.mp4" {
		t.Errorf("link = %q", link)
	}
	if h1.downloadCalls != 1 || h2.downloadCalls != 1 {
		t.Errorf("download calls = %d/%d, want 1/1", h1.downloadCalls, h2.downloadCalls)
	}
}

func TestHTMLFallbackAfterAPIFailure(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="https://cdn.example.test/dlink/42">grab</a></body></html>`)
	}))
	t.Cleanup(page.Close)

	host := newAPIHost(t, 2, "")
	cfg := testConfig(t, host.srv.URL)
	fake := &fakeInspector{cookies: core.SessionCookies{"ndus": "x"}}

	shareURL := page.URL + "/s/abc"
	link, err := newResolver(cfg, fake, shareURL, &fakeWaiter{}).
		Resolve(context.Background(), shareURL, &core.VideoMetadata{Name: "v"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if link != "https://cdn.example.test/dlink/42" {
		t.Errorf("link = %q", link)
	}
}

func TestExhaustionKeepsLastAPIError(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>nothing here</body></html>`)
	}))
	t.Cleanup(page.Close)

	host := newAPIHost(t, 7, "")
	cfg := testConfig(t, host.srv.URL)
	fake := &fakeInspector{}

	shareURL := page.URL + "/s/abc"
	_, err := newResolver(cfg, fake, shareURL, &fakeWaiter{}).
		Resolve(context.Background(), shareURL, &core.VideoMetadata{Name: "v"})
	if err == nil {
		t.Fatal("Resolve succeeded with every strategy exhausted")
	}
	if !strings.Contains(err.Error(), "errno 7") {
		t.Errorf("error %q lost the specific API failure", err)
	}
	if fake.closed != 1 {
		t.Errorf("session closed %d times, want 1", fake.closed)
	}
}

func TestNavigateFailureReleasesSession(t *testing.T) {
	cfg := testConfig(t)
	fake := &fakeInspector{navigateErr: errors.New("net::ERR_CONNECTION_RESET")}

	_, err := newResolver(cfg, fake, "https://terabox.com/s/a", &fakeWaiter{}).
		Resolve(context.Background(), "https://terabox.com/s/a", &core.VideoMetadata{Name: "v"})
	if err == nil {
		t.Fatal("Resolve succeeded despite navigation failure")
	}
	if fake.closed != 1 {
		t.Errorf("session closed %d times, want 1", fake.closed)
	}
}
