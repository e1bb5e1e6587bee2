package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"wgslln/internal/source"
	"wgslln/internal/token"
)

// PositionJSON is a 1-based line/column pair.
type PositionJSON struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

// TokenOutput is one token-tree node in JSON output.
type TokenOutput struct {
	Kind     string        `json:"kind"`
	Text     string        `json:"text,omitempty"`
	Delim    string        `json:"delim,omitempty"`
	Spacing  string        `json:"spacing,omitempty"`
	Start    PositionJSON  `json:"start"`
	End      PositionJSON  `json:"end"`
	Children []TokenOutput `json:"children,omitempty"`
}

// FormatTreesPretty выводит дерево токенов с отступами по вложенности:
//
//	Ident "fn" 1:1-1:3
//	Group Paren 1:5-1:12
//	  Ident "a" 1:6-1:7
func FormatTreesPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	var err error
	token.Walk(tokens, func(tok token.Token, depth int) bool {
		if err != nil {
			return false
		}
		start, end := fs.Resolve(tok.FullSpan())
		var b strings.Builder
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(tok.Kind.String())
		switch tok.Kind {
		case token.Group:
			b.WriteString(" " + tok.Delim.String())
		case token.Punct:
			fmt.Fprintf(&b, " %q %s", tok.Text, tok.Spacing)
		default:
			fmt.Fprintf(&b, " %q", tok.Text)
		}
		fmt.Fprintf(&b, " %d:%d-%d:%d\n", start.Line, start.Col, end.Line, end.Col)
		_, err = io.WriteString(w, b.String())
		return true
	})
	return err
}

// FormatTreesJSON выводит дерево токенов в JSON формате
func FormatTreesJSON(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(treeOutput(tokens, fs))
}

func treeOutput(tokens []token.Token, fs *source.FileSet) []TokenOutput {
	out := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		start, end := fs.Resolve(tok.FullSpan())
		node := TokenOutput{
			Kind:  tok.Kind.String(),
			Text:  tok.Text,
			Start: PositionJSON{Line: start.Line, Col: start.Col},
			End:   PositionJSON{Line: end.Line, Col: end.Col},
		}
		switch tok.Kind {
		case token.Group:
			node.Delim = tok.Delim.String()
			node.Children = treeOutput(tok.Children, fs)
		case token.Punct:
			node.Spacing = tok.Spacing.String()
		}
		out = append(out, node)
	}
	return out
}
