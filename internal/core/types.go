package core

// VideoMetadata holds the fields scraped from a rendered share page.
// Name is the only field the pipeline requires; Size is the human-readable
// string shown on the page and FileID may be empty when the page's initial
// state object is missing or obfuscated.
type VideoMetadata struct {
	Name   string `json:"name"`
	Size   string `json:"size"`
	Path   string `json:"path"`
	FileID string `json:"fileId"`
}

// SessionCookies maps cookie names to values captured from a live browser
// context. A later capture replaces the earlier one wholesale.
type SessionCookies map[string]string

// Clone returns an independent copy so a re-capture cannot mutate cookies
// already handed to an HTTP client.
func (s SessionCookies) Clone() SessionCookies {
	if s == nil {
		return nil
	}
	out := make(SessionCookies, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// DownloadResult is the terminal value of a pipeline run. Message carries
// the saved file path on success, or the failure description.
type DownloadResult struct {
	Success bool
	Message string
}
