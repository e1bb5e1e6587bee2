package lexer

import (
	"wgslln/internal/diag"
	"wgslln/internal/source"
)

type Options struct {
	// Reporter may be nil: errors are dropped but lexing continues.
	Reporter diag.Reporter
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	return diag.ReportError(lx.opts.Reporter, code, sp, msg)
}
