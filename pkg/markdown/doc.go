// Package markdown parses the Markdown subset used by mulch articles into
// a flat block sequence and renders it to HTML.
//
// The parser is deliberately small: headings, paragraphs, fenced code
// blocks, lists, block quotes and thematic breaks cover the entire corpus.
// Code fences carry display annotations in their info string
// (e.g. "js {1,3-5}{numberLines: true}") which become highlight hints and
// line-number gutters in the rendered output. Annotations are display
// metadata only: rendering never fails because of them.
package markdown
