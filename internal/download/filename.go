package download

import (
	"path/filepath"
	"regexp"
	"strings"
)

const maxFilenameLen = 200

var (
	illegalChars   = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	dotRuns        = regexp.MustCompile(`\.+`)
)

// SanitizeFilename turns a displayed file name into a filesystem-safe one:
// illegal characters are stripped, whitespace runs become single
// underscores, repeated dots collapse, and the container suffix is always
// .mp4 no matter what the original was. Results stay within 200 characters
// with the suffix intact.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = illegalChars.ReplaceAllString(name, "")
	name = whitespaceRuns.ReplaceAllString(name, "_")
	name = dotRuns.ReplaceAllString(name, ".")
	name = strings.Trim(name, ". ")

	if name == "" {
		name = "video"
	}

	if ext := filepath.Ext(name); !strings.EqualFold(ext, ".mp4") {
		name = strings.TrimSuffix(name, ext)
		name = strings.TrimRight(name, ".")
		if name == "" {
			name = "video"
		}
		name += ".mp4"
	} else {
		// Normalize an upper/mixed-case .MP4 too.
		name = name[:len(name)-len(ext)] + ".mp4"
	}

	if len(name) > maxFilenameLen {
		name = name[:maxFilenameLen-4] + ".mp4"
	}
	return name
}
