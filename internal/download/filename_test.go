package download

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"illegal chars stripped, extension forced", "My Video???.MKV", "My_Video.mp4"},
		{"already mp4", "holiday.mp4", "holiday.mp4"},
		{"uppercase mp4 normalized", "CLIP.MP4", "CLIP.mp4"},
		{"whitespace runs collapse", "a   b\t c.mp4", "a_b_c.mp4"},
		{"dot runs collapse", "part...one...mp4", "part.one.mp4"},
		{"no extension", "plain", "plain.mp4"},
		{"path separators removed", `dir/sub\file.mp4`, "dirsubfile.mp4"},
		{"empty name", "", "video.mp4"},
		{"only illegal chars", `<>:"/\|?*`, "video.mp4"},
		{"leading and trailing dots trimmed", "..movie..", "movie.mp4"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFilename(tc.in); got != tc.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeFilenameTruncation(t *testing.T) {
	long := strings.Repeat("x", 250)
	got := SanitizeFilename(long)

	if len(got) > 200 {
		t.Errorf("length = %d, want <= 200", len(got))
	}
	if !strings.HasSuffix(got, ".mp4") {
		t.Errorf("suffix lost: %q", got[len(got)-10:])
	}
}

func TestSanitizeFilenameTruncationKeepsSuffixIntact(t *testing.T) {
	long := strings.Repeat("y", 240) + ".mp4"
	got := SanitizeFilename(long)

	if len(got) > 200 {
		t.Errorf("length = %d, want <= 200", len(got))
	}
	if !strings.HasSuffix(got, ".mp4") {
		t.Errorf("suffix lost on %q", got)
	}
	if strings.Count(got, ".") != 1 {
		t.Errorf("unexpected extra dots in %q", got)
	}
}
