package lexer

import (
	"golang.org/x/text/unicode/norm"

	"wgslln/internal/diag"
	"wgslln/internal/token"
)

// scanIdent reads an identifier. Non-ASCII identifiers are NFC-normalised so
// that `#é` finds a fragment exported as `é` whatever the editor produced.
func (lx *Lexer) scanIdent() token.Token {
	start := lx.cursor.Mark()
	ascii := true
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b < 0x80 {
			if !isIdentContinueByte(b) {
				break
			}
			lx.cursor.Bump()
			continue
		}
		r, _ := lx.peekRune()
		if !isIdentContinueRune(r) {
			break
		}
		ascii = false
		lx.bumpRune()
	}
	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	if !ascii {
		text = norm.NFC.String(text)
	}
	return token.NewIdent(text, sp)
}

// scanNumber reads a numeric literal with optional fraction, exponent and an
// alphanumeric suffix (`1.0`, `0x1F`, `2u`, `1e-3f`, `4f32`).
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	c := &lx.cursor

	if c.Peek() == '0' && (c.PeekAt(1) == 'x' || c.PeekAt(1) == 'X') {
		c.Bump()
		c.Bump()
		for isHex(c.Peek()) || c.Peek() == '_' {
			c.Bump()
		}
	} else {
		lx.eatDigits()
		// "1." is a float, "1..2" and "1.x" are not
		if c.Peek() == '.' && c.PeekAt(1) != '.' && !isIdentStartByte(c.PeekAt(1)) {
			c.Bump()
			lx.eatDigits()
		}
		if e := c.Peek(); e == 'e' || e == 'E' {
			next := c.PeekAt(1)
			switch {
			case isDec(next):
				c.Bump()
				lx.eatDigits()
			case (next == '+' || next == '-') && isDec(c.PeekAt(2)):
				c.Bump()
				c.Bump()
				lx.eatDigits()
			}
		}
	}
	for isIdentContinueByte(c.Peek()) {
		c.Bump()
	}
	sp := c.SpanFrom(start)
	return token.NewLiteral(string(lx.file.Content[sp.Start:sp.End]), sp)
}

func (lx *Lexer) eatDigits() {
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
}

// scanString reads "..." with backslash escapes kept verbatim.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		switch lx.cursor.Bump() {
		case '"':
			sp := lx.cursor.SpanFrom(start)
			return token.NewLiteral(string(lx.file.Content[sp.Start:sp.End]), sp)
		case '\\':
			lx.cursor.Bump()
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, sp, "unterminated string literal").Emit()
	return token.NewLiteral(string(lx.file.Content[sp.Start:sp.End]), sp)
}

// scanPunct reads one punctuation character. It is Joint when the next byte
// is punctuation as well (`-` in `->`), Alone otherwise.
func (lx *Lexer) scanPunct() token.Token {
	start := lx.cursor.Mark()
	ch := lx.cursor.Bump()
	spacing := token.Alone
	if next := lx.cursor.Peek(); isPunctByte(next) && !lx.commentAhead() {
		spacing = token.Joint
	}
	return token.NewPunct(rune(ch), spacing, lx.cursor.SpanFrom(start))
}

func (lx *Lexer) commentAhead() bool {
	return lx.cursor.Peek() == '/' && (lx.cursor.PeekAt(1) == '/' || lx.cursor.PeekAt(1) == '*')
}
