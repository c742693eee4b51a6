package scan

import (
	"regexp/syntax"
	"strings"
)

// ExtractKeyword analyzes a regex pattern and returns the longest literal
// string that MUST be present for the regex to match, lowercased for the
// case-insensitive prefilter. Returns empty string if none found.
func ExtractKeyword(regexStr string) string {
	re, err := syntax.Parse(regexStr, syntax.Perl)
	if err != nil {
		return ""
	}
	return strings.ToLower(findBestLiteral(re))
}

func findBestLiteral(re *syntax.Regexp) string {
	switch re.Op {
	case syntax.OpLiteral:
		return string(re.Rune)

	case syntax.OpConcat:
		// Longest literal in the chain
		var best string
		for _, sub := range re.Sub {
			candidate := findBestLiteral(sub)
			if len(candidate) > len(best) {
				best = candidate
			}
		}
		return best

	case syntax.OpCapture:
		return findBestLiteral(re.Sub[0])

	case syntax.OpPlus: // A+ -> A is required
		return findBestLiteral(re.Sub[0])

	case syntax.OpRepeat:
		if re.Min > 0 {
			return findBestLiteral(re.Sub[0])
		}
		return ""

	default:
		return ""
	}
}

// IsValidKeyword checks if the keyword is long enough to be worth indexing.
func IsValidKeyword(kw string) bool {
	if len(kw) < 4 {
		return false
	}
	return !isRepetitive(kw)
}

func isRepetitive(s string) bool {
	if len(s) == 0 {
		return false
	}
	first := s[0]
	for i := 1; i < len(s); i++ {
		if s[i] != first {
			return false
		}
	}
	return true
}
