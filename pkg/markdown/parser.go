package markdown

import (
	"strings"
)

// Block is a node in a parsed document body.
// Line is the 1-based source line where the block starts, relative to the
// body (front matter excluded).
type Block interface {
	Pos() int
}

// Heading is an ATX heading (#, ##, ...).
type Heading struct {
	Line  int
	Level int
	Text  string
}

// Paragraph is a run of plain prose lines.
type Paragraph struct {
	Line int
	Text string
}

// CodeBlock is a fenced code sample with its display annotations.
// Closed is false when the fence ran to end of input without a closing
// delimiter; the linter reports it, the renderer shows what it has.
type CodeBlock struct {
	Line   int
	Info   FenceInfo
	Lines  []string
	Closed bool
}

// List is a flat bullet or ordered list.
type List struct {
	Line    int
	Ordered bool
	Items   []string
}

// BlockQuote is a run of '>' prefixed lines.
type BlockQuote struct {
	Line  int
	Lines []string
}

// ThematicBreak is a horizontal rule.
type ThematicBreak struct {
	Line int
}

func (b Heading) Pos() int       { return b.Line }
func (b Paragraph) Pos() int     { return b.Line }
func (b CodeBlock) Pos() int     { return b.Line }
func (b List) Pos() int          { return b.Line }
func (b BlockQuote) Pos() int    { return b.Line }
func (b ThematicBreak) Pos() int { return b.Line }

// Parse splits a document body into blocks. It is a single synchronous
// pass and never fails: anything unrecognized flows through as paragraph
// text, and an unclosed fence is returned with Closed=false.
func Parse(body string) []Block {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")

	var blocks []Block
	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			i++

		case strings.HasPrefix(trimmed, "```"):
			block, next := parseFence(lines, i)
			blocks = append(blocks, block)
			i = next

		case headingLevel(trimmed) > 0:
			level := headingLevel(trimmed)
			text := strings.TrimSpace(trimmed[level:])
			blocks = append(blocks, Heading{Line: i + 1, Level: level, Text: text})
			i++

		case isThematicBreak(trimmed):
			blocks = append(blocks, ThematicBreak{Line: i + 1})
			i++

		case strings.HasPrefix(trimmed, ">"):
			block, next := parseBlockQuote(lines, i)
			blocks = append(blocks, block)
			i = next

		case isListItem(trimmed):
			block, next := parseList(lines, i)
			blocks = append(blocks, block)
			i = next

		default:
			block, next := parseParagraph(lines, i)
			blocks = append(blocks, block)
			i = next
		}
	}

	return blocks
}

func parseFence(lines []string, start int) (CodeBlock, int) {
	opener := strings.TrimSpace(lines[start])
	info := ParseFenceInfo(strings.TrimPrefix(opener, "```"))

	block := CodeBlock{Line: start + 1, Info: info}

	i := start + 1
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "```" {
			block.Closed = true
			return block, i + 1
		}
		block.Lines = append(block.Lines, lines[i])
		i++
	}

	// Ran off the end: fence never closed.
	return block, i
}

func parseBlockQuote(lines []string, start int) (BlockQuote, int) {
	block := BlockQuote{Line: start + 1}

	i := start
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, ">") {
			break
		}
		text := strings.TrimPrefix(trimmed, ">")
		block.Lines = append(block.Lines, strings.TrimPrefix(text, " "))
		i++
	}
	return block, i
}

func parseList(lines []string, start int) (List, int) {
	first := strings.TrimSpace(lines[start])
	block := List{Line: start + 1, Ordered: isOrderedItem(first)}

	i := start
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if !isListItem(trimmed) {
			break
		}
		block.Items = append(block.Items, listItemText(trimmed))
		i++
	}
	return block, i
}

func parseParagraph(lines []string, start int) (Paragraph, int) {
	var parts []string

	i := start
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "```") ||
			headingLevel(trimmed) > 0 || isThematicBreak(trimmed) ||
			strings.HasPrefix(trimmed, ">") || isListItem(trimmed) {
			break
		}
		parts = append(parts, trimmed)
		i++
	}

	return Paragraph{Line: start + 1, Text: strings.Join(parts, " ")}, i
}

// headingLevel returns the ATX level (1-6) or 0 if the line is not a heading.
func headingLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0
	}
	if level == len(line) || line[level] == ' ' {
		return level
	}
	return 0
}

func isThematicBreak(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, r := range line {
		if r != '-' && r != '*' && r != '_' {
			return false
		}
	}
	return true
}

func isListItem(line string) bool {
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "+ ") {
		return true
	}
	return isOrderedItem(line)
}

func isOrderedItem(line string) bool {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return false
	}
	return line[i] == '.' && i+1 < len(line) && line[i+1] == ' '
}

func listItemText(line string) string {
	if isOrderedItem(line) {
		dot := strings.IndexByte(line, '.')
		return strings.TrimSpace(line[dot+1:])
	}
	return strings.TrimSpace(line[2:])
}
