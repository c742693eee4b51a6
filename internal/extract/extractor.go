// Package extract pulls the displayed file name, size and share identifier
// out of a rendered share page.
package extract

import (
	"fmt"
	"time"

	"teragrab/internal/browser"
	"teragrab/internal/core"
)

// metadataScript reads the file info nodes by partial class name and the
// share id from the page's initial-state global. Class names on the share
// pages rotate, the "file-name"/"file-size" fragments have stayed put.
const metadataScript = `(() => {
	const nameElement = document.querySelector('[class*="file-name"]');
	const sizeElement = document.querySelector('[class*="file-size"]');
	const state = window.__INITIAL_STATE__ || {};
	const share = state.shareInfo || {};
	return {
		name: nameElement ? nameElement.textContent.trim() : '',
		size: sizeElement ? sizeElement.textContent.trim() : '',
		path: window.location.pathname,
		fileId: String(share.shareid || share.file_id || ''),
	};
})()`

type Extractor struct {
	sessions browser.Factory
	settle   time.Duration
}

func New(sessions browser.Factory) *Extractor {
	return &Extractor{sessions: sessions, settle: 5 * time.Second}
}

// Extract opens the share page in a fresh session and scrapes its metadata.
// The session is released on every path; any failure comes back as an error,
// never a panic. A page without a file name is treated as a failure because
// nothing downstream can proceed without one.
func (e *Extractor) Extract(url string) (*core.VideoMetadata, error) {
	page, err := e.sessions()
	if err != nil {
		return nil, fmt.Errorf("extraction error: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(url, e.settle); err != nil {
		return nil, fmt.Errorf("extraction error: %w", err)
	}

	var meta core.VideoMetadata
	if err := page.Evaluate(metadataScript, &meta); err != nil {
		return nil, fmt.Errorf("extraction error: %w", err)
	}

	if meta.Name == "" {
		return nil, fmt.Errorf("could not find video information on page")
	}
	return &meta, nil
}
