// Package textclean strips markdown from generated summaries so they can be
// shown as plain previews or read aloud.
package textclean

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxSpeechChars is the longest text accepted for synthesis.
const MaxSpeechChars = 3000

// PreviewChars is the preview length returned with documents.
const PreviewChars = 100

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

// Order matters: bold must be unwrapped before italic.
var markdownRules = []rewrite{
	{regexp.MustCompile(`(?m)^#+\s+`), ""},
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "$1"},
	{regexp.MustCompile(`\*(.*?)\*`), "$1"},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
	{regexp.MustCompile("`([^`]+)`"), "$1"},
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},
	{regexp.MustCompile(`(?m)^\s*\d+\.\s+`), ""},
	{regexp.MustCompile(`\n+`), " "},
}

var (
	sectionGlyphs = regexp.MustCompile(`[📋🔍📊💡🎯📝]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// Markdown removes markdown syntax for display.
func Markdown(s string) string {
	return settle(s, func(in string) string {
		return collapse(stripMarkdown(in))
	})
}

// Speech removes markdown syntax and the decorative section glyphs so a
// synthesizer does not read them out.
func Speech(s string) string {
	return settle(s, func(in string) string {
		return collapse(sectionGlyphs.ReplaceAllString(stripMarkdown(in), ""))
	})
}

// settle reapplies pass until the output stops changing, so that nested
// markers like "- - item" are fully removed and cleaning is idempotent.
// After the first pass no newlines remain, so any further change shortens
// the text and the loop terminates.
func settle(s string, pass func(string) string) string {
	out := pass(s)
	for {
		next := pass(out)
		if next == out {
			return out
		}
		out = next
	}
}

// Preview returns the display form of s cut to n runes with an ellipsis.
func Preview(s string, n int) string {
	clean := Markdown(s)
	if utf8.RuneCountInString(clean) <= n {
		return clean
	}
	return Truncate(clean, n) + "..."
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func stripMarkdown(s string) string {
	for _, r := range markdownRules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
