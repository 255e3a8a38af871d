package markdown

import (
	"fmt"
	"html"
	"strings"
)

// RenderHTML renders a block sequence to an HTML fragment.
// Display annotations are best-effort: highlight hints outside a fence's
// line count are clamped, never fatal.
func RenderHTML(blocks []Block) string {
	var sb strings.Builder

	for _, block := range blocks {
		switch b := block.(type) {
		case Heading:
			anchor := Slugify(b.Text)
			fmt.Fprintf(&sb, "<h%d id=%q>%s</h%d>\n", b.Level, anchor, renderInline(b.Text), b.Level)

		case Paragraph:
			fmt.Fprintf(&sb, "<p>%s</p>\n", renderInline(b.Text))

		case CodeBlock:
			renderCode(&sb, b)

		case List:
			tag := "ul"
			if b.Ordered {
				tag = "ol"
			}
			fmt.Fprintf(&sb, "<%s>\n", tag)
			for _, item := range b.Items {
				fmt.Fprintf(&sb, "<li>%s</li>\n", renderInline(item))
			}
			fmt.Fprintf(&sb, "</%s>\n", tag)

		case BlockQuote:
			sb.WriteString("<blockquote>\n")
			for _, line := range b.Lines {
				fmt.Fprintf(&sb, "<p>%s</p>\n", renderInline(line))
			}
			sb.WriteString("</blockquote>\n")

		case ThematicBreak:
			sb.WriteString("<hr>\n")
		}
	}

	return sb.String()
}

// renderCode emits a fenced block as <pre><code> with one span per line.
// Highlighted lines get the "hl" class; the gutter is a leading span with
// the line number when the fence asked for numbering.
func renderCode(sb *strings.Builder, b CodeBlock) {
	lang := b.Info.Lang
	if lang == "" {
		lang = "text"
	}

	fmt.Fprintf(sb, "<pre class=\"code\" data-lang=%q><code>", lang)

	for i, line := range b.Lines {
		class := "line"
		if b.Info.Highlighted(i + 1) {
			class = "line hl"
		}

		fmt.Fprintf(sb, "<span class=%q>", class)
		if b.Info.NumberLines {
			fmt.Fprintf(sb, "<span class=\"ln\">%d</span>", b.Info.StartLine+i)
		}
		sb.WriteString(html.EscapeString(line))
		sb.WriteString("</span>\n")
	}

	sb.WriteString("</code></pre>\n")
}

// Slugify derives a heading anchor: lowercase, alphanumerics kept, runs of
// anything else collapsed to single hyphens.
func Slugify(text string) string {
	var sb strings.Builder
	lastHyphen := true // suppress leading hyphen

	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				sb.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}
