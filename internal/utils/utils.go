package utils

import (
	"net/url"
	"os"
	"regexp"
	"strings"
)

var shareIDPattern = regexp.MustCompile(`/(?:s|sharing)/([a-zA-Z0-9_-]+)`)

// ValidateShareURL reports whether rawURL points at one of the allowed share
// hosts and carries a non-empty path. Parse failures count as invalid.
func ValidateShareURL(rawURL string, hosts []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Path == "" || u.Path == "/" {
		return false
	}
	for _, h := range hosts {
		if u.Host == h {
			return true
		}
	}
	return false
}

// ShareID extracts the share identifier from a share URL. Both the /s/<id>
// and /sharing/<id> link forms are recognized; anything else falls back to
// the last path segment.
func ShareID(rawURL string) string {
	if m := shareIDPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	trimmed := strings.TrimRight(rawURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return ""
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
