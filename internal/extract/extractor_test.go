package extract

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"teragrab/internal/browser"
	"teragrab/internal/core"
)

// fakeInspector satisfies browser.Inspector without a real Chrome. Evaluate
// answers are keyed on script content; Close invocations are counted so
// leak checks can assert release on every path.
type fakeInspector struct {
	navigateErr error
	evaluateErr error
	meta        map[string]string
	closed      int
}

func (f *fakeInspector) Navigate(url string, settle time.Duration) error { return f.navigateErr }

func (f *fakeInspector) Evaluate(expr string, out interface{}) error {
	if f.evaluateErr != nil {
		return f.evaluateErr
	}
	if strings.Contains(expr, "file-name") {
		raw, _ := json.Marshal(f.meta)
		return json.Unmarshal(raw, out)
	}
	return nil
}

func (f *fakeInspector) HTML() (string, error) { return "", nil }

func (f *fakeInspector) Cookies() (core.SessionCookies, error) { return core.SessionCookies{}, nil }

func (f *fakeInspector) Screenshot(path string) error { return nil }

func (f *fakeInspector) Close() { f.closed++ }

func factoryFor(f *fakeInspector, err error) browser.Factory {
	return func() (browser.Inspector, error) {
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

func TestExtractSuccess(t *testing.T) {
	fake := &fakeInspector{meta: map[string]string{
		"name":   "holiday.mp4",
		"size":   "1.2 GB",
		"path":   "/s/abc123",
		"fileId": "987654",
	}}

	meta, err := New(factoryFor(fake, nil)).Extract("https://terabox.com/s/abc123")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if meta.Name != "holiday.mp4" || meta.Size != "1.2 GB" || meta.FileID != "987654" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if fake.closed != 1 {
		t.Errorf("session closed %d times, want 1", fake.closed)
	}
}

func TestExtractMissingName(t *testing.T) {
	fake := &fakeInspector{meta: map[string]string{"name": "", "size": "1 GB"}}

	_, err := New(factoryFor(fake, nil)).Extract("https://terabox.com/s/abc123")
	if err == nil {
		t.Fatal("Extract succeeded on page without a file name")
	}
	if !strings.Contains(err.Error(), "video information") {
		t.Errorf("error %q doesn't describe the missing information", err)
	}
	if fake.closed != 1 {
		t.Errorf("session closed %d times, want 1", fake.closed)
	}
}

func TestExtractNavigateErrorReleasesSession(t *testing.T) {
	fake := &fakeInspector{navigateErr: errors.New("net::ERR_TIMED_OUT")}

	_, err := New(factoryFor(fake, nil)).Extract("https://terabox.com/s/abc123")
	if err == nil {
		t.Fatal("Extract succeeded despite navigation failure")
	}
	if fake.closed != 1 {
		t.Errorf("session closed %d times, want 1", fake.closed)
	}
}

func TestExtractSessionLaunchError(t *testing.T) {
	_, err := New(factoryFor(nil, errors.New("no chrome"))).Extract("https://terabox.com/s/abc123")
	if err == nil {
		t.Fatal("Extract succeeded despite launch failure")
	}
}
