package site

import (
	"html/template"

	"github.com/aretw0/mulch/pkg/markdown"
)

// renderedHTML marks the renderer's output as safe for templating.
// The renderer escapes all article text itself.
func renderedHTML(blocks []markdown.Block) template.HTML {
	return template.HTML(markdown.RenderHTML(blocks))
}

// The page shells are intentionally plain: the site is documentation, not
// a theme showcase. Styling hooks (.line, .hl, .ln) match what the
// markdown renderer emits.

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="description" content="{{.Description}}">
<title>{{.Title}} | {{.Site.Title}}</title>
<link rel="stylesheet" href="{{.Site.BaseURL}}style.css">
</head>
<body>
<header><a href="{{.Site.BaseURL}}">{{.Site.Title}}</a></header>
<main>
<article>
<h1>{{.Title}}</h1>
<p class="meta"><time datetime="{{.DateISO}}">{{.DateDisplay}}</time></p>
<p class="description">{{.Description}}</p>
{{.Content}}
</article>
</main>
</body>
</html>
`

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Site.Title}}</title>
<link rel="stylesheet" href="{{.Site.BaseURL}}style.css">
</head>
<body>
<header><a href="{{.Site.BaseURL}}">{{.Site.Title}}</a></header>
<main>
<ul class="articles">
{{range .Articles}}<li>
<a href="{{$.Site.BaseURL}}{{.ID}}/">{{.Title}}</a>
<time datetime="{{.DateISO}}">{{.DateDisplay}}</time>
<p>{{.Description}}</p>
</li>
{{end}}</ul>
</main>
</body>
</html>
`

// stylesheet covers the renderer's code output: per-line spans, highlight
// background, and the line-number gutter.
const stylesheet = `body { max-width: 42rem; margin: 0 auto; padding: 1rem; font-family: system-ui, sans-serif; line-height: 1.6; }
pre.code { background: #1e2127; color: #e6e6e6; padding: 0.75rem 0; overflow-x: auto; border-radius: 4px; }
pre.code .line { display: block; padding: 0 0.75rem; }
pre.code .line.hl { background: #2d3440; border-left: 3px solid #ffd866; padding-left: calc(0.75rem - 3px); }
pre.code .ln { display: inline-block; width: 2.5em; color: #6c7380; user-select: none; }
code { font-family: ui-monospace, monospace; }
p code, li code { background: #f0f0f0; color: inherit; padding: 0.1em 0.3em; border-radius: 3px; }
blockquote { border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; color: #555; }
.meta time { color: #777; font-size: 0.9rem; }
ul.articles { list-style: none; padding: 0; }
ul.articles li { margin-bottom: 1.5rem; }
`

var (
	pageTmpl  = template.Must(template.New("page").Parse(pageTemplate))
	indexTmpl = template.Must(template.New("index").Parse(indexTemplate))
)

// sitePage is the template context shared by both shells.
type sitePage struct {
	Title   string
	BaseURL string
}

// articlePage is the context for a rendered article.
type articlePage struct {
	Site        sitePage
	ID          string
	Title       string
	Description string
	DateISO     string
	DateDisplay string
	Content     template.HTML
}

// indexPage is the context for the front page.
type indexPage struct {
	Site     sitePage
	Articles []articlePage
}
