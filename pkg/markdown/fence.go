package markdown

import (
	"sort"
	"strconv"
	"strings"
)

// FenceInfo is the parsed form of a code fence info string.
//
//	```js {1,3-5}{numberLines: true}
//
// yields Lang "js", Highlights {1,3,4,5}, NumberLines true, StartLine 1.
type FenceInfo struct {
	Lang        string
	Highlights  []int // 1-based line numbers, sorted, deduplicated
	NumberLines bool
	StartLine   int      // first gutter number, 1 unless overridden
	Unknown     []string // annotation bodies that matched no known form
}

// Highlighted reports whether the given 1-based line is marked.
func (f FenceInfo) Highlighted(line int) bool {
	i := sort.SearchInts(f.Highlights, line)
	return i < len(f.Highlights) && f.Highlights[i] == line
}

// ParseFenceInfo parses a fence info string. The language tag comes first;
// any number of {...} annotation groups may follow in any order. Unknown
// annotation content is collected for the linter but otherwise ignored.
func ParseFenceInfo(info string) FenceInfo {
	f := FenceInfo{StartLine: 1}

	info = strings.TrimSpace(info)
	if info == "" {
		return f
	}

	// Language tag runs until whitespace or the first brace.
	end := len(info)
	for i, r := range info {
		if r == '{' || r == ' ' || r == '\t' {
			end = i
			break
		}
	}
	f.Lang = info[:end]
	rest := info[end:]

	for {
		open := strings.IndexByte(rest, '{')
		if open == -1 {
			break
		}
		close := strings.IndexByte(rest[open:], '}')
		if close == -1 {
			// Unterminated group; keep it visible to the linter.
			f.Unknown = append(f.Unknown, strings.TrimSpace(rest[open:]))
			break
		}
		body := rest[open+1 : open+close]
		rest = rest[open+close+1:]

		f.applyAnnotation(body)
	}

	sort.Ints(f.Highlights)
	f.Highlights = dedupe(f.Highlights)

	return f
}

// applyAnnotation interprets a single {...} body.
func (f *FenceInfo) applyAnnotation(body string) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return
	}

	// numberLines: true | false | <N>
	if key, val, found := strings.Cut(trimmed, ":"); found && strings.TrimSpace(key) == "numberLines" {
		val = strings.TrimSpace(val)
		switch val {
		case "true":
			f.NumberLines = true
		case "false":
			f.NumberLines = false
		default:
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				f.NumberLines = true
				f.StartLine = n
			} else {
				f.Unknown = append(f.Unknown, trimmed)
			}
		}
		return
	}

	// Highlight range list: 1,3-5,8
	lines, ok := parseRangeList(trimmed)
	if !ok {
		f.Unknown = append(f.Unknown, trimmed)
		return
	}
	f.Highlights = append(f.Highlights, lines...)
}

// parseRangeList parses "1,3-5,8" into individual line numbers.
func parseRangeList(s string) ([]int, bool) {
	var lines []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, false
		}

		if lo, hi, found := strings.Cut(part, "-"); found {
			start, err1 := strconv.Atoi(strings.TrimSpace(lo))
			end, err2 := strconv.Atoi(strings.TrimSpace(hi))
			if err1 != nil || err2 != nil || start < 1 || end < start {
				return nil, false
			}
			for n := start; n <= end; n++ {
				lines = append(lines, n)
			}
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, false
		}
		lines = append(lines, n)
	}
	return lines, true
}

func dedupe(sorted []int) []int {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, n := range sorted[1:] {
		if n != out[len(out)-1] {
			out = append(out, n)
		}
	}
	return out
}
