package compose

import (
	"wgslln/internal/source"
	"wgslln/internal/token"
)

// Ref is the first fragment reference of a sequence.
type Ref struct {
	Name string
	Span source.Span // the identifier after the sigil
}

type scanner struct {
	opts  Options
	sigil rune
	found bool
	ref   Ref
}

// Scan finds the first `sigil name` in preorder (nested groups included).
// That sigil is dropped, and so is every later sigil in front of the same
// name; all other tokens are kept. The input is not modified.
//
// Without a reference the input is returned as is with ok == false.
func Scan(seq []token.Token, opts Options) (out []token.Token, ref Ref, ok bool) {
	s := &scanner{opts: opts, sigil: opts.sigil()}
	out = s.seq(seq)
	if !s.found {
		return seq, Ref{}, false
	}
	return out, s.ref, true
}

func (s *scanner) seq(in []token.Token) []token.Token {
	out := make([]token.Token, 0, len(in))
	for i := 0; i < len(in); i++ {
		tok := in[i]
		if tok.IsPunct(s.sigil) && i+1 < len(in) && in[i+1].IsIdent() {
			name := in[i+1]
			switch {
			case !s.found && !s.opts.passThrough(name.Text):
				s.found = true
				s.ref = Ref{Name: name.Text, Span: name.Span}
				out = append(out, name)
				i++
				continue
			case s.found && name.Text == s.ref.Name:
				out = append(out, name)
				i++
				continue
			}
		}
		if tok.Kind == token.Group {
			tok.Children = s.seq(tok.Children)
		}
		out = append(out, tok)
	}
	return out
}
