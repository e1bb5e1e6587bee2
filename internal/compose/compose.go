// Package compose resolves fragment references in a token tree, emits the
// result as WGSL text and maps validator errors back to host locations.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"wgslln/internal/diag"
	"wgslln/internal/emit"
	"wgslln/internal/source"
	"wgslln/internal/srcmap"
	"wgslln/internal/token"
	"wgslln/internal/trace"
	"wgslln/internal/wgsl"
)

// Result is one successful composition.
type Result struct {
	Text string
	Map  srcmap.Map
	// Fragments lists pasted fragment names in paste order.
	Fragments []string
	// Unchecked is set when validation was skipped for preprocessor text.
	Unchecked bool
}

// Composer is safe for concurrent use once Fragments is fully populated.
type Composer struct {
	Fragments Fragments
	// Validator may be nil: the text is then accepted unchecked.
	Validator wgsl.Validator
	Options   Options
}

// suggester is implemented by registries that can propose a close name.
type suggester interface {
	Suggest(name string) (string, bool)
	Site(name string) (source.Span, bool)
}

// Compose turns raw into WGSL text. site is the location of the whole
// composition, used when an error cannot be attributed to a token.
// Failures are returned as a single diagnostic, without partial output.
func (c *Composer) Compose(ctx context.Context, raw []token.Token, site source.Span) (Result, *diag.Diagnostic) {
	return c.ComposeAs(ctx, "", raw, site)
}

// ComposeAs composes the body of the fragment exported as self: references
// back to self resolve to the body itself instead of a second paste.
func (c *Composer) ComposeAs(ctx context.Context, self string, raw []token.Token, site source.Span) (Result, *diag.Diagnostic) {
	var seed []string
	if self != "" {
		seed = append(seed, self)
	}
	_, span := trace.Start(ctx, trace.ScopeStep, "resolve")
	seq, pending, err := Resolve(raw, c.Fragments, c.Options, seed...)
	span.WithExtra("pastes", strconv.Itoa(pending.Len()-len(seed))).End("")
	if err != nil {
		return Result{}, c.resolveError(err, site)
	}
	pasted := pending.Names()[len(seed):]

	out, err := emit.Serialize(seq, emit.Options{Sigil: c.Options.sigil(), MaxBytes: c.Options.MaxText})
	if err != nil {
		trace.FailCtx(ctx, trace.ScopeStep, "serialize", err)
		return Result{}, diag.NewError(diag.CmpFailed, site, err.Error())
	}
	res := Result{
		Text:      out.Text,
		Map:       out.Map,
		Fragments: pasted,
	}
	trace.PointCtx(ctx, trace.ScopeStep, "serialize", fmt.Sprintf("%d bytes, %d map entries", len(out.Text), len(out.Map)))

	if (c.Options.Preprocessor && out.Directives) || c.Validator == nil {
		res.Unchecked = true
		return res, nil
	}

	_, span = trace.Start(ctx, trace.ScopeStep, "validate")
	verr := c.Validator.Validate(out.Text)
	span.End("")
	if verr != nil {
		trace.FailCtx(ctx, trace.ScopeStep, "validate", verr)
		return Result{}, grammarError(verr, out.Map, site)
	}
	return res, nil
}

func (c *Composer) resolveError(err error, site source.Span) *diag.Diagnostic {
	var unknown *UnknownFragmentError
	if !errors.As(err, &unknown) {
		return diag.NewError(diag.CmpFailed, site, err.Error())
	}
	d := diag.NewError(diag.CmpUnknownFragment, unknown.Span, unknown.Error())
	if s, ok := c.Fragments.(suggester); ok {
		if name, ok := s.Suggest(unknown.Name); ok {
			at, _ := s.Site(name)
			d.WithNote(at, fmt.Sprintf("did you mean %q?", name))
		}
	}
	return d
}

// grammarError attributes a validator error to the token nearest before the
// reported offset, or to site.
func grammarError(err error, m srcmap.Map, site source.Span) *diag.Diagnostic {
	var werr *wgsl.Error
	if !errors.As(err, &werr) {
		return diag.NewError(diag.WgslGrammarError, site, err.Error())
	}
	at := site
	if off, convErr := safecast.Conv[uint32](werr.Offset); convErr == nil {
		at = srcmap.Translate(m, off, site)
	}
	return diag.NewError(diag.WgslGrammarError, at, werr.Message)
}
