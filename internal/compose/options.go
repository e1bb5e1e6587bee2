package compose

import "wgslln/internal/token"

// DefaultPassThrough lists the preprocessor directives that follow the sigil
// in preprocessor mode and are never fragment references.
var DefaultPassThrough = []string{
	"define_import_path",
	"import",
	"if",
	"ifdef",
	"ifndef",
	"else",
	"endif",
}

type Options struct {
	// Sigil marks a fragment reference; 0 means '#'.
	Sigil rune
	// Preprocessor turns on pass-through of directive names and skips
	// validation of text that still carries directives.
	Preprocessor bool
	// PassThrough overrides DefaultPassThrough when non-nil.
	PassThrough []string
	// MaxText caps the composed text in bytes; 0 means no cap below 4 GiB.
	MaxText uint64
}

func (o Options) sigil() rune {
	if o.Sigil == 0 {
		return '#'
	}
	return o.Sigil
}

func (o Options) passThrough(name string) bool {
	if !o.Preprocessor {
		return false
	}
	list := o.PassThrough
	if list == nil {
		list = DefaultPassThrough
	}
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

// UsesDirectives reports whether seq carries a pass-through directive
// (sigil followed by a directive name) at any depth.
func UsesDirectives(seq []token.Token, opts Options) bool {
	sigil := opts.sigil()
	for i, tok := range seq {
		if tok.Kind == token.Group {
			if UsesDirectives(tok.Children, opts) {
				return true
			}
			continue
		}
		if tok.IsPunct(sigil) && i+1 < len(seq) && seq[i+1].IsIdent() && opts.passThrough(seq[i+1].Text) {
			return true
		}
	}
	return false
}
