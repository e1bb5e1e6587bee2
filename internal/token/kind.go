package token

// Kind represents the variant of a token-tree node.
type Kind uint8

const (
	// Invalid is the zero value and never produced by the lexer.
	Invalid Kind = iota
	// Ident is an identifier.
	Ident
	// Punct is a single punctuation character.
	Punct
	// Literal is a numeric or string literal.
	Literal
	// Group is a delimited subtree.
	Group
)

func (k Kind) String() string {
	switch k {
	case Ident:
		return "Ident"
	case Punct:
		return "Punct"
	case Literal:
		return "Literal"
	case Group:
		return "Group"
	default:
		return "Invalid"
	}
}

// Delimiter is the bracket kind of a Group.
type Delimiter uint8

const (
	// None is an invisible group; it is transparent when emitted.
	None Delimiter = iota
	// Paren is `( .. )`.
	Paren
	// Brace is `{ .. }`: the block delimiter, and the inline one after a sigil.
	Brace
	// Bracket is `[ .. ]`.
	Bracket
)

// Open returns the opening character of the delimiter (0 for None).
func (d Delimiter) Open() byte {
	switch d {
	case Paren:
		return '('
	case Brace:
		return '{'
	case Bracket:
		return '['
	}
	return 0
}

// Close returns the closing character of the delimiter (0 for None).
func (d Delimiter) Close() byte {
	switch d {
	case Paren:
		return ')'
	case Brace:
		return '}'
	case Bracket:
		return ']'
	}
	return 0
}

func (d Delimiter) String() string {
	switch d {
	case Paren:
		return "Paren"
	case Brace:
		return "Brace"
	case Bracket:
		return "Bracket"
	default:
		return "None"
	}
}

// DelimiterFor maps an opening or closing character to its delimiter.
func DelimiterFor(ch byte) (Delimiter, bool) {
	switch ch {
	case '(', ')':
		return Paren, true
	case '{', '}':
		return Brace, true
	case '[', ']':
		return Bracket, true
	}
	return None, false
}

// Spacing tells whether a punctuation character was glued to the next one.
type Spacing uint8

const (
	// Alone: followed by whitespace, an identifier, a literal or a group.
	Alone Spacing = iota
	// Joint: immediately followed by another punctuation character (`-` in `->`).
	Joint
)

func (s Spacing) String() string {
	if s == Joint {
		return "Joint"
	}
	return "Alone"
}
