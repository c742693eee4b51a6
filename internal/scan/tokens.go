// Package scan digs anti-forgery tokens and download links out of raw page
// HTML once the in-browser DOM probes have come up empty.
package scan

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/coregx/coregex"
	"gopkg.in/yaml.v3"
)

//go:embed patterns
var embeddedPatterns embed.FS

type PatternTemplate struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Regex string `yaml:"regex"`
}

type PatternFile struct {
	Name     string            `yaml:"name"`
	Version  string            `yaml:"version"`
	Patterns []PatternTemplate `yaml:"patterns"`
}

type CompiledPattern struct {
	ID          string
	Name        string
	Regex       *coregex.Regexp
	RegexString string
}

var (
	loadOnce     sync.Once
	loadedErr    error
	loadedTokens []CompiledPattern
)

// LoadPatterns compiles the embedded token templates once; the declared
// order in the YAML is the order patterns are tried.
func LoadPatterns() ([]CompiledPattern, error) {
	loadOnce.Do(func() {
		loadedTokens, loadedErr = loadFromFS()
	})
	return loadedTokens, loadedErr
}

func loadFromFS() ([]CompiledPattern, error) {
	var all []CompiledPattern
	var loadErrors []string

	err := fs.WalkDir(embeddedPatterns, "patterns", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}

		data, err := embeddedPatterns.ReadFile(path)
		if err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: read error: %v", path, err))
			return nil
		}

		var file PatternFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: parse error: %v", path, err))
			return nil
		}

		for _, pt := range file.Patterns {
			re, err := coregex.Compile(pt.Regex)
			if err != nil {
				loadErrors = append(loadErrors, fmt.Sprintf("%s: invalid regex: %v", pt.ID, err))
				continue
			}
			all = append(all, CompiledPattern{
				ID:          pt.ID,
				Name:        pt.Name,
				Regex:       re,
				RegexString: pt.Regex,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk patterns directory: %w", err)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("no token patterns loaded, errors: %v", loadErrors)
	}
	return all, nil
}

// quotedValue pulls the last quoted run out of a pattern match. Every token
// shape ends in a quoted value, so the final quote pair is the token.
func quotedValue(match string) string {
	end := strings.LastIndexAny(match, `'"`)
	if end <= 0 {
		return ""
	}
	q := match[end]
	start := strings.LastIndexByte(match[:end], q)
	if start < 0 {
		return ""
	}
	return match[start+1 : end]
}
