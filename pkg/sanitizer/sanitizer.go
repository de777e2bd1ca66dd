// Package sanitizer normalizes free-text user input before it is validated
// and stored.
package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reInlineSpace   = regexp.MustCompile(`[ \t]+`)
	reAnySpace      = regexp.MustCompile(`\s+`)
	reBlankLines    = regexp.MustCompile(`\n{3,}`)
	reCategoryChars = regexp.MustCompile(`[^a-z0-9]+`)
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

func lower(s string) string {
	return strings.ToLower(s)
}

// stripControl drops control characters. Newlines survive when keepNewlines is set.
func stripControl(keepNewlines bool) Strategy {
	return func(s string) string {
		return strings.Map(func(r rune) rune {
			if r == '\n' && keepNewlines {
				return r
			}
			if r == '\t' {
				return ' '
			}
			if unicode.IsControl(r) {
				return -1
			}
			return r
		}, s)
	}
}

func collapseSpaces(s string) string {
	return reAnySpace.ReplaceAllString(s, " ")
}

func collapseInlineSpaces(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = reInlineSpace.ReplaceAllString(s, " ")
	return reBlankLines.ReplaceAllString(s, "\n\n")
}

// SanitizeTitle makes a single-line label out of s.
func SanitizeTitle(s string) string {
	return Pipeline{
		stripControl(false),
		collapseSpaces,
		trim,
	}.Apply(s)
}

// SanitizeMessageText keeps paragraph breaks but removes other control
// characters and runs of blank lines.
func SanitizeMessageText(s string) string {
	return Pipeline{
		collapseInlineSpaces,
		stripControl(true),
		trim,
	}.Apply(s)
}

// SanitizeCategory lower-cases and hyphenates: "Tech Support" -> "tech-support".
func SanitizeCategory(s string) string {
	return Pipeline{
		trim,
		lower,
		func(s string) string { return reCategoryChars.ReplaceAllString(s, "-") },
		func(s string) string { return strings.Trim(s, "-") },
	}.Apply(s)
}

// SanitizeID trims identifiers taken from paths, queries and headers.
func SanitizeID(s string) string {
	return trim(s)
}
