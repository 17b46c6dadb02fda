package axtree

import (
	"regexp"
	"strings"
)

// Volatile substrings, most specific first: byte sizes, clock durations,
// unit durations, then bare numbers. Each is replaced by a wildcard that
// matches the whole class, so snapshots differing only in these compare
// equal.
var volatileClasses = []struct {
	match   *regexp.Regexp
	pattern string
}{
	{regexp.MustCompile(`\d+(?:\.\d+)?\s*[KMGT]i?B\b`), `[\d.]+\s*[KMGT]i?B`},
	{regexp.MustCompile(`\b\d+:\d{2}(?::\d{2})?\b`), `\d+(?::\d{2})+`},
	{regexp.MustCompile(`\b\d+(?:\.\d+)?\s*(?:ms|s|m|h|d)\b`), `[\d.]+\s*(?:ms|s|m|h|d)`},
	{regexp.MustCompile(`\d+(?:[.,]\d+)*`), `[\d.,]+`},
}

var anyVolatile = regexp.MustCompile(`\d`)

// bestGuessPattern returns a slash-delimited regular expression matching s
// with its volatile numeric content generalized, or "" when s contains
// nothing volatile and should stay literal.
func bestGuessPattern(s string) string {
	if s == "" || !anyVolatile.MatchString(s) {
		return ""
	}
	type span struct {
		start, end int
		pattern    string
	}
	var spans []span
	taken := make([]bool, len(s))
	for _, class := range volatileClasses {
		for _, loc := range class.match.FindAllStringIndex(s, -1) {
			overlap := false
			for i := loc[0]; i < loc[1]; i++ {
				if taken[i] {
					overlap = true
					break
				}
			}
			if overlap {
				continue
			}
			for i := loc[0]; i < loc[1]; i++ {
				taken[i] = true
			}
			spans = append(spans, span{start: loc[0], end: loc[1], pattern: class.pattern})
		}
	}
	if len(spans) == 0 {
		return ""
	}
	// Spans were collected per class; restore document order.
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j].start < spans[j-1].start; j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}
	var sb strings.Builder
	sb.WriteString("/")
	prev := 0
	for _, sp := range spans {
		sb.WriteString(regexp.QuoteMeta(s[prev:sp.start]))
		sb.WriteString(sp.pattern)
		prev = sp.end
	}
	sb.WriteString(regexp.QuoteMeta(s[prev:]))
	sb.WriteString("/")
	return sb.String()
}

// informative judges whether a text run says anything beyond its node's own
// name: after removing the longest run shared with the name, more than 10%
// of the text's characters must remain.
func informative(text, name string) bool {
	if text == "" {
		return false
	}
	if name == "" {
		return true
	}
	shared := longestCommonRun(text, name)
	remaining := len(text) - len(shared)
	return remaining*10 > len(text)
}

// longestCommonRun returns the longest common substring of a and b.
func longestCommonRun(a, b string) string {
	if a == "" || b == "" {
		return ""
	}
	// Classic quadratic table over bytes; names and runs are short.
	best, bestEnd := 0, 0
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
					bestEnd = i
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}
	return a[bestEnd-best : bestEnd]
}
