package markdown

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Inline replacements run on already-escaped text, so the patterns only
// ever see entity-encoded angle brackets and quotes.
var (
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	inlineStrong = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	inlineEm     = regexp.MustCompile(`\*([^*]+)\*|\b_([^_]+)_\b`)
	inlineLink   = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
)

// renderInline escapes a prose span and applies inline markup: code spans,
// strong, emphasis, links. Code spans win over emphasis, matching how the
// articles nest them.
func renderInline(text string) string {
	escaped := html.EscapeString(text)

	// Protect code spans from the emphasis passes.
	type span struct{ placeholder, rendered string }
	var spans []span
	escaped = inlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		inner := inlineCode.FindStringSubmatch(m)[1]
		s := span{
			placeholder: placeholderFor(len(spans)),
			rendered:    "<code>" + inner + "</code>",
		}
		spans = append(spans, s)
		return s.placeholder
	})

	escaped = inlineLink.ReplaceAllString(escaped, `<a href="$2">$1</a>`)
	escaped = inlineStrong.ReplaceAllString(escaped, "<strong>$1</strong>")
	escaped = inlineEm.ReplaceAllStringFunc(escaped, func(m string) string {
		sub := inlineEm.FindStringSubmatch(m)
		inner := sub[1]
		if inner == "" {
			inner = sub[2]
		}
		return "<em>" + inner + "</em>"
	})

	for _, s := range spans {
		escaped = strings.Replace(escaped, s.placeholder, s.rendered, 1)
	}

	return escaped
}

func placeholderFor(n int) string {
	// NUL bytes cannot appear in escaped text.
	return "\x00" + strconv.Itoa(n) + "\x00"
}
