package decl

import "wgslln/internal/token"

var itemKeywords = map[string]bool{
	"fn":       true,
	"struct":   true,
	"alias":    true,
	"var":      true,
	"const":    true,
	"override": true,
}

// DeclaredNames returns the module-scope item names a fragment body declares,
// in order. Attributes and `var<...>` templates are skipped.
func DeclaredNames(body []token.Token) []string {
	var names []string
	for i := 0; i < len(body); i++ {
		tok := body[i]
		if !tok.IsIdent() || !itemKeywords[tok.Text] {
			continue
		}
		j := i + 1
		if tok.Text == "var" {
			j = skipTemplate(body, j)
		}
		if j < len(body) && body[j].IsIdent() {
			names = append(names, body[j].Text)
			i = j
		}
	}
	return names
}

// Declares reports whether body declares a module-scope item called name.
func Declares(body []token.Token, name string) bool {
	for _, n := range DeclaredNames(body) {
		if n == name {
			return true
		}
	}
	return false
}

func skipTemplate(seq []token.Token, i int) int {
	if i >= len(seq) || !seq[i].IsPunct('<') {
		return i
	}
	depth := 0
	for ; i < len(seq); i++ {
		switch {
		case seq[i].IsPunct('<'):
			depth++
		case seq[i].IsPunct('>'):
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return i
}
