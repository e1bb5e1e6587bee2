package token

import "strings"

// Walk visits seq in preorder, depth-first, left to right. fn receives each
// token and its depth; returning false skips the children of a group.
func Walk(seq []Token, fn func(tok Token, depth int) bool) {
	walk(seq, 0, fn)
}

func walk(seq []Token, depth int, fn func(Token, int) bool) {
	for _, tok := range seq {
		if !fn(tok, depth) {
			continue
		}
		if tok.Kind == Group {
			walk(tok.Children, depth+1, fn)
		}
	}
}

// Clone deep-copies a sequence so the result shares no group slices with seq.
func Clone(seq []Token) []Token {
	if seq == nil {
		return nil
	}
	out := make([]Token, len(seq))
	for i, tok := range seq {
		if tok.Kind == Group {
			tok.Children = Clone(tok.Children)
		}
		out[i] = tok
	}
	return out
}

// Idents returns every identifier of seq in traversal order.
func Idents(seq []Token) []string {
	var out []string
	Walk(seq, func(tok Token, _ int) bool {
		if tok.Kind == Ident {
			out = append(out, tok.Text)
		}
		return true
	})
	return out
}

// Equal compares two sequences structurally, ignoring spans.
func Equal(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Kind != y.Kind || x.Text != y.Text || x.Delim != y.Delim {
			return false
		}
		if x.Kind == Punct && x.Spacing != y.Spacing {
			return false
		}
		if x.Kind == Group && !Equal(x.Children, y.Children) {
			return false
		}
	}
	return true
}

// Count returns the number of tokens in seq, groups included.
func Count(seq []Token) int {
	n := 0
	Walk(seq, func(Token, int) bool {
		n++
		return true
	})
	return n
}

// Debug renders seq compactly (`fn f(x) {..}`), mostly for tests and traces.
func Debug(seq []Token) string {
	var b strings.Builder
	debug(&b, seq)
	return b.String()
}

func debug(b *strings.Builder, seq []Token) {
	for i, tok := range seq {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch tok.Kind {
		case Group:
			if o := tok.Delim.Open(); o != 0 {
				b.WriteByte(o)
			}
			debug(b, tok.Children)
			if c := tok.Delim.Close(); c != 0 {
				b.WriteByte(c)
			}
		default:
			b.WriteString(tok.Text)
		}
	}
}
