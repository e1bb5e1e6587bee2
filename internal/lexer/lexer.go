package lexer

import (
	"fmt"

	"wgslln/internal/diag"
	"wgslln/internal/source"
	"wgslln/internal/token"
)

// Lexer turns a host source file into a token tree.
type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// Tree lexes the whole file. Delimiter errors are reported and recovered:
// unmatched closers are dropped, unclosed groups are closed at EOF.
func Tree(file *source.File, opts Options) []token.Token {
	return New(file, opts).Tree()
}

// незакрытая группа на стеке
type frame struct {
	delim    token.Delimiter
	open     source.Span
	children []token.Token
}

func (lx *Lexer) Tree() []token.Token {
	stack := []frame{{delim: token.None}}
	push := func(tok token.Token) {
		top := &stack[len(stack)-1]
		top.children = append(top.children, tok)
	}

	for {
		lx.skipTrivia()
		if lx.cursor.EOF() {
			break
		}
		ch := lx.cursor.Peek()
		switch {
		case ch == '(' || ch == '[' || ch == '{':
			start := lx.cursor.Mark()
			lx.cursor.Bump()
			delim, _ := token.DelimiterFor(ch)
			stack = append(stack, frame{delim: delim, open: lx.cursor.SpanFrom(start)})

		case ch == ')' || ch == ']' || ch == '}':
			start := lx.cursor.Mark()
			lx.cursor.Bump()
			closeSpan := lx.cursor.SpanFrom(start)
			delim, _ := token.DelimiterFor(ch)
			stack = lx.closeGroup(stack, delim, closeSpan)

		case isIdentStartByte(ch):
			push(lx.scanIdent())

		case ch >= 0x80:
			r, _ := lx.peekRune()
			if isIdentStartRune(r) {
				push(lx.scanIdent())
				continue
			}
			start := lx.cursor.Mark()
			lx.bumpRune()
			lx.errLex(diag.LexUnknownChar, lx.cursor.SpanFrom(start), fmt.Sprintf("unknown character %q", r)).Emit()

		case isDec(ch):
			push(lx.scanNumber())

		case ch == '"':
			push(lx.scanString())

		case isPunctByte(ch):
			push(lx.scanPunct())

		default:
			start := lx.cursor.Mark()
			lx.cursor.Bump()
			lx.errLex(diag.LexUnknownChar, lx.cursor.SpanFrom(start), fmt.Sprintf("unknown character %q", ch)).Emit()
		}
	}

	eof := lx.cursor.SpanFrom(lx.cursor.Mark())
	for len(stack) > 1 {
		top := stack[len(stack)-1]
		lx.errLex(diag.LexUnclosedDelimiter, top.open,
			fmt.Sprintf("unclosed delimiter %q", top.delim.Open())).Emit()
		stack = lx.popGroup(stack, eof)
	}
	return stack[0].children
}

// closeGroup handles a closing delimiter. A closer that matches an outer
// group closes every inner group first (each reported as unclosed).
func (lx *Lexer) closeGroup(stack []frame, delim token.Delimiter, closeSpan source.Span) []frame {
	if len(stack) == 1 {
		lx.errLex(diag.LexUnexpectedCloser, closeSpan,
			fmt.Sprintf("unexpected closing delimiter %q", delim.Close())).Emit()
		return stack
	}
	top := stack[len(stack)-1]
	if top.delim == delim {
		return lx.popGroup(stack, closeSpan)
	}

	match := -1
	for i := len(stack) - 1; i > 0; i-- {
		if stack[i].delim == delim {
			match = i
			break
		}
	}
	if match < 0 {
		lx.errLex(diag.LexMismatchedCloser, closeSpan,
			fmt.Sprintf("mismatched closing delimiter %q", delim.Close())).
			WithNote(top.open, fmt.Sprintf("unclosed %q opened here", top.delim.Open())).
			Emit()
		return stack
	}
	for len(stack)-1 > match {
		inner := stack[len(stack)-1]
		lx.errLex(diag.LexUnclosedDelimiter, inner.open,
			fmt.Sprintf("unclosed delimiter %q", inner.delim.Open())).Emit()
		stack = lx.popGroup(stack, closeSpan.StartPoint())
	}
	return lx.popGroup(stack, closeSpan)
}

func (lx *Lexer) popGroup(stack []frame, closeSpan source.Span) []frame {
	top := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	group := token.NewGroup(top.delim, top.children, top.open, closeSpan)
	parent := &stack[len(stack)-1]
	parent.children = append(parent.children, group)
	return stack
}
