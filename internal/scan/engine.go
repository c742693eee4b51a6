package scan

import (
	"bytes"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// Engine gates the regex patterns behind an Aho-Corasick keyword prefilter:
// a pattern only runs when its required literal actually occurs in the page,
// so a multi-megabyte share page costs one linear scan in the common case.
type Engine struct {
	matcher         *ahocorasick.Matcher
	keywordPatterns map[int][]int // keyword index -> pattern indices
	fallback        []int         // patterns with no usable keyword, always run
	patterns        []CompiledPattern
}

var (
	engineOnce sync.Once
	engineErr  error
	engine     *Engine
)

// DefaultEngine builds the engine from the embedded templates on first use.
func DefaultEngine() (*Engine, error) {
	engineOnce.Do(func() {
		patterns, err := LoadPatterns()
		if err != nil {
			engineErr = err
			return
		}
		engine = NewEngine(patterns)
	})
	return engine, engineErr
}

func NewEngine(patterns []CompiledPattern) *Engine {
	e := &Engine{
		keywordPatterns: make(map[int][]int),
		patterns:        patterns,
	}

	var keywords []string
	keywordIdx := make(map[string]int)

	for i, p := range patterns {
		kw := ExtractKeyword(p.RegexString)
		if !IsValidKeyword(kw) {
			e.fallback = append(e.fallback, i)
			continue
		}
		idx, exists := keywordIdx[kw]
		if !exists {
			idx = len(keywords)
			keywords = append(keywords, kw)
			keywordIdx[kw] = idx
		}
		e.keywordPatterns[idx] = append(e.keywordPatterns[idx], i)
	}

	e.matcher = ahocorasick.NewStringMatcher(keywords)
	return e
}

// FindToken returns the first token value matched by the patterns, trying
// them in declared order. The prefilter runs on a lowercased copy so the
// case-insensitive patterns still trigger.
func (e *Engine) FindToken(content []byte) (string, bool) {
	triggered := make(map[int]bool)
	for _, idx := range e.fallback {
		triggered[idx] = true
	}
	for _, kwIdx := range e.matcher.Match(bytes.ToLower(content)) {
		for _, pIdx := range e.keywordPatterns[kwIdx] {
			triggered[pIdx] = true
		}
	}

	for i, p := range e.patterns {
		if !triggered[i] {
			continue
		}
		matches := p.Regex.FindAll(content, -1)
		if len(matches) == 0 {
			continue
		}
		if v := quotedValue(string(matches[0])); v != "" {
			return v, true
		}
	}
	return "", false
}
