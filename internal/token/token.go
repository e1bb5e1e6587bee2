package token

import (
	"wgslln/internal/source"
)

// Token is a node of the token tree.
//
// Field usage by kind:
//
//	Ident    Text, Span
//	Punct    Text (one character), Spacing, Span
//	Literal  Text, Span
//	Group    Delim, Span (open delimiter), Close (close delimiter), Children
type Token struct {
	Kind     Kind
	Text     string
	Spacing  Spacing
	Delim    Delimiter
	Span     source.Span
	Close    source.Span
	Children []Token
}

// NewIdent builds an identifier token.
func NewIdent(name string, sp source.Span) Token {
	return Token{Kind: Ident, Text: name, Span: sp}
}

// NewPunct builds a punctuation token.
func NewPunct(ch rune, spacing Spacing, sp source.Span) Token {
	return Token{Kind: Punct, Text: string(ch), Spacing: spacing, Span: sp}
}

// NewLiteral builds a literal token.
func NewLiteral(text string, sp source.Span) Token {
	return Token{Kind: Literal, Text: text, Span: sp}
}

// NewGroup builds a group token around children.
func NewGroup(delim Delimiter, children []Token, open, closeSpan source.Span) Token {
	return Token{Kind: Group, Delim: delim, Children: children, Span: open, Close: closeSpan}
}

// IsIdent reports whether the token is an identifier, optionally named name.
func (t Token) IsIdent(name ...string) bool {
	if t.Kind != Ident {
		return false
	}
	if len(name) == 0 {
		return true
	}
	for _, n := range name {
		if t.Text == n {
			return true
		}
	}
	return false
}

// IsPunct reports whether the token is the punctuation character ch.
func (t Token) IsPunct(ch rune) bool {
	return t.Kind == Punct && t.Char() == ch
}

// IsGroup reports whether the token is a group with the given delimiter.
func (t Token) IsGroup(d Delimiter) bool {
	return t.Kind == Group && t.Delim == d
}

// Char returns the punctuation character, or 0 for other kinds.
func (t Token) Char() rune {
	if t.Kind != Punct {
		return 0
	}
	for _, r := range t.Text {
		return r
	}
	return 0
}

// FullSpan covers the token including a group's closing delimiter.
func (t Token) FullSpan() source.Span {
	if t.Kind == Group {
		return t.Span.Cover(t.Close)
	}
	return t.Span
}
