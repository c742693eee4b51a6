package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// ProgressBar renders byte-level download progress on one terminal line.
// Total may be zero when the server didn't declare a content length; the
// bar then degrades to a running byte counter.
type ProgressBar struct {
	Total   int64
	Current int64
	Width   int
	Prefix  string
	done    bool
}

func NewProgressBar(total int64, prefix string) *ProgressBar {
	return &ProgressBar{
		Total:  total,
		Width:  40,
		Prefix: prefix,
	}
}

func (p *ProgressBar) Add(n int64) {
	p.Current += n
	p.render()
}

// Finish terminates the progress line. Safe to call more than once.
func (p *ProgressBar) Finish() {
	if p.done {
		return
	}
	p.done = true
	fmt.Println()
}

func (p *ProgressBar) render() {
	if p.Total <= 0 {
		fmt.Printf("\r%s %s   ",
			Blue+p.Prefix+Reset,
			Cyan+humanize.IBytes(uint64(p.Current))+Reset,
		)
		return
	}

	percent := float64(p.Current) / float64(p.Total)
	if percent > 1.0 {
		percent = 1.0
	}

	filled := int(float64(p.Width) * percent)
	if filled > p.Width {
		filled = p.Width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.Width-filled)

	fmt.Printf("\r%s %s [%.1f%%] %s / %s   ",
		Blue+p.Prefix+Reset,
		Cyan+bar+Reset,
		percent*100,
		humanize.IBytes(uint64(p.Current)),
		humanize.IBytes(uint64(p.Total)),
	)
}
