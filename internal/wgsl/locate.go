package wgsl

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	lineColumnRe = regexp.MustCompile(`(?i)\bline\s+(\d+)\s*[,:]?\s*col(?:umn)?\s+(\d+)`)
	pairRe       = regexp.MustCompile(`\b(\d+):(\d+)\b`)
	quotedRe     = regexp.MustCompile("['\"`]([A-Za-z_][A-Za-z0-9_]*)['\"`]")
	namedRe      = regexp.MustCompile(`(?i)\b(?:identifier|function|variable|member|field)\s*:?\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// Locate finds the byte offset in text that an error message refers to:
// a line/column pair first, then the first whole-word use of a quoted or
// named identifier. It returns -1 when the message names no place.
func Locate(text, msg string) int {
	for _, re := range []*regexp.Regexp{lineColumnRe, pairRe} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			col, _ := strconv.Atoi(m[2])
			if off := lineColumnOffset(text, line, col); off >= 0 {
				return off
			}
		}
	}
	for _, re := range []*regexp.Regexp{quotedRe, namedRe} {
		for _, m := range re.FindAllStringSubmatch(msg, -1) {
			if off := wordOffset(text, m[1]); off >= 0 {
				return off
			}
		}
	}
	return -1
}

// lineColumnOffset converts a 1-based line and rune column. A column past
// the end of the line is clamped to it.
func lineColumnOffset(text string, line, col int) int {
	if line < 1 {
		return -1
	}
	start := 0
	for i := 1; i < line; i++ {
		nl := strings.IndexByte(text[start:], '\n')
		if nl < 0 {
			return -1
		}
		start += nl + 1
	}
	end := strings.IndexByte(text[start:], '\n')
	if end < 0 {
		end = len(text) - start
	}
	lineText := text[start : start+end]
	off := 0
	for n := 1; n < col && off < len(lineText); n++ {
		_, size := utf8.DecodeRuneInString(lineText[off:])
		off += size
	}
	return start + off
}

func wordOffset(text, word string) int {
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], word)
		if i < 0 {
			return -1
		}
		at := from + i
		end := at + len(word)
		if !isWordByte(text, at-1) && !isWordByte(text, end) {
			return at
		}
		from = end
	}
	return -1
}

func isWordByte(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return false
	}
	c := text[i]
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
