// Package assistant implements the local rule-based portfolio assistant:
// text normalisation, intent matchers and the fixed-priority dispatch engine.
package assistant

import (
	"regexp"
	"strings"
)

var (
	disallowedChars = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// Normalize lowercases s, replaces every character outside [a-z0-9\s] with a
// space, collapses whitespace runs and trims. All matchers see only this form.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = disallowedChars.ReplaceAllString(s, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// firstToken returns the first space-separated word of the lowercased name.
func firstToken(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
