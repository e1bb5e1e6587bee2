// Package emit serialises a resolved token tree into WGSL text and records,
// for every emitted token and group delimiter, where it came from.
//
// Layout rules matter to the preprocessor: a line break after `;` and `}`,
// a line break before the sigil, no space after it, no space around `:`.
package emit

import (
	"errors"
	"fmt"
	"math"

	"fortio.org/safecast"

	"wgslln/internal/source"
	"wgslln/internal/srcmap"
	"wgslln/internal/token"
)

type Options struct {
	// Sigil is the reference marker character; 0 means '#'.
	Sigil rune
	// MaxBytes caps the emitted text; 0 means the offset limit of 4 GiB.
	MaxBytes uint64
}

// ErrTooLarge reports text that outgrew Options.MaxBytes.
var ErrTooLarge = errors.New("emitted text too large")

func (o Options) maxBytes() uint64 {
	if o.MaxBytes == 0 || o.MaxBytes > math.MaxUint32 {
		return math.MaxUint32
	}
	return o.MaxBytes
}

func (o Options) sigil() rune {
	if o.Sigil == 0 {
		return '#'
	}
	return o.Sigil
}

// Output is the emitted text with its offset map.
type Output struct {
	Text string
	Map  srcmap.Map
	// Directives is set when a sigil reached the output, i.e. the text carries
	// preprocessor directives and is not plain WGSL.
	Directives bool
}

type writer struct {
	buf        []byte
	m          srcmap.Map
	sigil      rune
	limit      uint64
	directives bool
	err        error
}

// Serialize emits seq; equal input gives byte-equal output. The only failure
// is ErrTooLarge, since map offsets are uint32.
func Serialize(seq []token.Token, opts Options) (Output, error) {
	w := &writer{sigil: opts.sigil(), limit: opts.maxBytes()}
	w.seq(seq)
	if w.err == nil && uint64(len(w.buf)) > w.limit {
		w.err = fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(w.buf), w.limit)
	}
	if w.err != nil {
		return Output{}, w.err
	}
	return Output{Text: string(w.buf), Map: w.m, Directives: w.directives}, nil
}

func (w *writer) record(sp source.Span) {
	if w.err != nil {
		return
	}
	n, err := safecast.Conv[uint32](len(w.buf))
	if err != nil || uint64(n) > w.limit {
		w.err = fmt.Errorf("%w: more than %d bytes", ErrTooLarge, w.limit)
		return
	}
	w.m.Add(n, sp)
}

func (w *writer) trimSpace() {
	if n := len(w.buf); n > 0 && w.buf[n-1] == ' ' {
		w.buf = w.buf[:n-1]
	}
}

func (w *writer) endsWith(b byte) bool {
	return len(w.buf) > 0 && w.buf[len(w.buf)-1] == b
}

func (w *writer) seq(seq []token.Token) {
	for i := 0; i < len(seq) && w.err == nil; i++ {
		tok := seq[i]
		switch tok.Kind {
		case token.Ident, token.Literal:
			w.record(tok.Span)
			w.buf = append(w.buf, tok.Text...)
			w.buf = append(w.buf, ' ')

		case token.Punct:
			if tok.Char() == w.sigil {
				if i+1 < len(seq) && seq[i+1].IsGroup(token.Brace) {
					w.inline(tok, seq[i+1])
					i++
				} else {
					w.sigilMark(tok)
				}
				continue
			}
			w.punct(tok)

		case token.Group:
			w.group(tok)
		}
	}
}

func (w *writer) punct(tok token.Token) {
	ch := tok.Char()
	switch ch {
	case ':', ',', '.', ';':
		w.trimSpace()
	}
	w.record(tok.Span)
	w.buf = append(w.buf, tok.Text...)
	switch {
	case ch == ';':
		w.buf = append(w.buf, '\n')
	case ch == ':' || ch == '.' || ch == '@' || tok.Spacing == token.Joint:
	default:
		w.buf = append(w.buf, ' ')
	}
}

// sigilMark starts a directive on its own line: `\n#name`.
func (w *writer) sigilMark(tok token.Token) {
	w.directives = true
	w.buf = append(w.buf, '\n')
	w.record(tok.Span)
	w.buf = append(w.buf, tok.Text...)
}

// inline keeps `#{NAME}` on one line.
func (w *writer) inline(sigil, group token.Token) {
	w.directives = true
	w.record(sigil.Span)
	w.buf = append(w.buf, sigil.Text...)
	w.record(group.Span)
	w.buf = append(w.buf, '{')
	w.seq(group.Children)
	w.trimSpace()
	w.record(group.Close)
	w.buf = append(w.buf, '}', ' ')
}

func (w *writer) group(tok token.Token) {
	if tok.Delim == token.None {
		w.seq(tok.Children)
		return
	}
	if tok.Delim == token.Paren || tok.Delim == token.Bracket {
		w.trimSpace()
	}
	w.record(tok.Span)
	w.buf = append(w.buf, tok.Delim.Open())
	if tok.Delim == token.Brace {
		w.buf = append(w.buf, '\n')
	}
	w.seq(tok.Children)
	w.trimSpace()
	if tok.Delim == token.Brace && !w.endsWith('\n') {
		w.buf = append(w.buf, '\n')
	}
	w.record(tok.Close)
	w.buf = append(w.buf, tok.Delim.Close())
	if tok.Delim == token.Brace {
		w.buf = append(w.buf, '\n')
	} else {
		w.buf = append(w.buf, ' ')
	}
}
