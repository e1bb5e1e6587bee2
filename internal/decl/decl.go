// Package decl recognises the declarations of a host file:
//
//	[@export(name)] shader NAME { body } [;]
//
// The body is kept as a raw token sequence for composition.
package decl

import (
	"fmt"

	"wgslln/internal/diag"
	"wgslln/internal/source"
	"wgslln/internal/token"
)

// Decl is one `shader` declaration.
type Decl struct {
	Name       string
	NameSpan   source.Span
	Export     string // empty when the shader is not exported
	ExportSpan source.Span
	Body       []token.Token
	BodySpan   source.Span // `{ .. }` including braces
	Span       source.Span // from the first attribute to the closing brace
}

// Exported reports whether the shader registers a fragment.
func (d *Decl) Exported() bool {
	return d.Export != ""
}

type parser struct {
	seq  []token.Token
	pos  int
	rep  diag.Reporter
	decl []Decl
}

// Parse walks the top level of a host file. Malformed items are reported and
// skipped; the declarations that parsed are returned in source order.
func Parse(seq []token.Token, rep diag.Reporter) []Decl {
	p := &parser{seq: seq, rep: rep}
	p.run()
	return p.decl
}

func (p *parser) peek(n int) (token.Token, bool) {
	if p.pos+n >= len(p.seq) {
		return token.Token{}, false
	}
	return p.seq[p.pos+n], true
}

func (p *parser) lastSpan() source.Span {
	if len(p.seq) == 0 {
		return source.Span{}
	}
	sp := p.seq[len(p.seq)-1].FullSpan()
	return source.Span{File: sp.File, Start: sp.End, End: sp.End}
}

func (p *parser) run() {
	var (
		export     string
		exportSpan source.Span
		attrStart  source.Span
		hasExport  bool
	)
	for p.pos < len(p.seq) {
		tok := p.seq[p.pos]
		switch {
		case tok.IsPunct('@'):
			name, sp, ok := p.attribute()
			if ok {
				if hasExport {
					diag.ReportError(p.rep, diag.DeclBadExport, sp, "duplicate @export attribute").
						WithNote(exportSpan, "previous @export here").
						Emit()
					continue
				}
				export, exportSpan, hasExport = name, sp, true
				attrStart = tok.Span
			}

		case tok.IsIdent("shader"):
			d, ok := p.shader()
			if !ok {
				hasExport = false
				continue
			}
			if hasExport {
				d.Export = export
				d.ExportSpan = exportSpan
				d.Span = attrStart.Cover(d.Span)
				hasExport = false
			}
			p.decl = append(p.decl, d)

		default:
			diag.ReportError(p.rep, diag.DeclUnexpectedToken, tok.FullSpan(),
				fmt.Sprintf("expected `shader` or an attribute, found %s", describe(tok))).Emit()
			p.pos++
		}
	}
	if hasExport {
		diag.ReportError(p.rep, diag.DeclBadExport, exportSpan, "@export is not followed by a shader declaration").Emit()
	}
}

// attribute parses `@name(args)` at p.pos. Only `export` is known; it
// returns the exported name and the span of the argument.
func (p *parser) attribute() (string, source.Span, bool) {
	at := p.seq[p.pos]
	p.pos++
	name, ok := p.peek(0)
	if !ok || !name.IsIdent() {
		diag.ReportError(p.rep, diag.DeclBadExport, at.Span, "expected attribute name after `@`").Emit()
		return "", source.Span{}, false
	}
	p.pos++
	args, hasArgs := p.peek(0)
	hasArgs = hasArgs && args.IsGroup(token.Paren)
	if hasArgs {
		p.pos++
	}

	if name.Text != "export" {
		diag.ReportError(p.rep, diag.DeclUnknownAttribute, at.Span.Cover(name.Span),
			fmt.Sprintf("unknown attribute @%s", name.Text)).Emit()
		return "", source.Span{}, false
	}
	whole := at.Span.Cover(name.Span)
	if hasArgs {
		whole = whole.Cover(args.FullSpan())
	}
	if !hasArgs || len(args.Children) != 1 || !args.Children[0].IsIdent() {
		diag.ReportError(p.rep, diag.DeclBadExport, whole, "expected @export(name)").Emit()
		return "", source.Span{}, false
	}
	arg := args.Children[0]
	return arg.Text, arg.Span, true
}

// shader parses `shader NAME { body } [;]` at p.pos.
func (p *parser) shader() (Decl, bool) {
	kw := p.seq[p.pos]
	p.pos++

	name, ok := p.peek(0)
	if !ok || !name.IsIdent() {
		sp := p.lastSpan()
		if ok {
			sp = name.FullSpan()
		}
		diag.ReportError(p.rep, diag.DeclExpectName, sp, "expected shader name after `shader`").Emit()
		return Decl{}, false
	}
	p.pos++

	body, ok := p.peek(0)
	if !ok || !body.IsGroup(token.Brace) {
		sp := p.lastSpan()
		if ok {
			sp = body.FullSpan()
		}
		diag.ReportError(p.rep, diag.DeclExpectBody, sp,
			fmt.Sprintf("expected `{` to open the body of shader %s", name.Text)).Emit()
		return Decl{}, false
	}
	p.pos++

	if semi, ok := p.peek(0); ok && semi.IsPunct(';') {
		p.pos++
	}

	return Decl{
		Name:     name.Text,
		NameSpan: name.Span,
		Body:     body.Children,
		BodySpan: body.FullSpan(),
		Span:     kw.Span.Cover(body.FullSpan()),
	}, true
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.Group:
		return fmt.Sprintf("`%c`", tok.Delim.Open())
	case token.Literal:
		return "literal " + tok.Text
	default:
		return "`" + tok.Text + "`"
	}
}
